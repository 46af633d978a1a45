package domain

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Payload is the body of an outbound request. It is one of JSONPayload,
// BinaryPayload, or nil for no body.
type Payload interface {
	isPayload()
}

// JSONPayload is a structured value encoded as JSON.
type JSONPayload struct {
	Value any
}

// BinaryPayload is sent byte-for-byte with its own content type, typically a
// multipart form with its boundary parameter.
type BinaryPayload struct {
	Data        []byte
	ContentType string
}

func (JSONPayload) isPayload()   {}
func (BinaryPayload) isPayload() {}

// JSON wraps v as a JSONPayload.
func JSON(v any) Payload { return JSONPayload{Value: v} }

// FilePart is a file field of a multipart form.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

// NewMultipartPayload encodes fields and files as multipart/form-data.
func NewMultipartPayload(fields map[string]string, files []FilePart) (BinaryPayload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return BinaryPayload{}, fmt.Errorf("multipart field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return BinaryPayload{}, fmt.Errorf("multipart file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return BinaryPayload{}, fmt.Errorf("multipart file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return BinaryPayload{}, fmt.Errorf("multipart close: %w", err)
	}

	return BinaryPayload{Data: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}
