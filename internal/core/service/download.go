package service

import (
	"context"
	"io"
	"time"

	"github.com/rentora/access-layer/internal/core/domain"
)

const mimeOctetStream = "application/octet-stream"

// Download sends desc and returns the response body as opaque bytes.
//
// Every failure, whether transport or status, is reported as the same
// transfer failure carrying domain.DownloadFailedMessage; the cause is only
// logged. A 401/403 still runs the AuthPolicy so the rejected credential is
// cleared and the login redirect scheduled.
func (d *Dispatcher) Download(ctx context.Context, desc domain.RequestDescriptor) ([]byte, error) {
	req, err := d.builder.Build(ctx, desc)
	if err != nil {
		d.log.Error().Err(err).Str("role", desc.Role.String()).Msg("download request build failed")
		return nil, d.transferFailure(desc, time.Now())
	}
	req.Header.Set("Accept", mimeOctetStream)

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn().Err(err).Str("role", desc.Role.String()).Str("url", req.URL.Redacted()).Msg("download failed")
		return nil, d.transferFailure(desc, start)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		d.log.Warn().Int("status", resp.StatusCode).Str("role", desc.Role.String()).Str("url", req.URL.Redacted()).Msg("download failed")
		if domain.IsAuthStatus(resp.StatusCode) && d.policy != nil {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = d.policy.Observe(desc.Role, domain.NewHTTPFailure(desc.Role, resp.StatusCode, backendMessage(raw)))
		}
		return nil, d.transferFailure(desc, start)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		d.log.Warn().Err(err).Str("role", desc.Role.String()).Msg("download body read failed")
		return nil, d.transferFailure(desc, start)
	}

	d.record(desc, start, nil)
	return data, nil
}

func (d *Dispatcher) transferFailure(desc domain.RequestDescriptor, start time.Time) error {
	f := domain.NewTransferFailure(desc.Role)
	d.record(desc, start, f)
	return f
}
