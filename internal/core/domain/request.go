package domain

// RequestDescriptor fully describes one outbound call. It is built fresh per
// call and never persisted.
type RequestDescriptor struct {
	Role    Role
	Method  string
	Path    string // relative to the base endpoint, or an absolute URL
	Payload Payload
}
