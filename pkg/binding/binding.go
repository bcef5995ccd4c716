// Package binding is the host-embedding boundary: a passthrough numeric
// operation and a plain asset record, used by embedders to verify the
// call path into this module. It carries no business logic.
package binding

// Plus100 adds 100 to the input.
func Plus100(input uint32) uint32 {
	return input + 100
}

// Asset mirrors the core asset record for transfer across the embedding
// boundary.
type Asset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	IsVideo  bool   `json:"is_video"`
}
