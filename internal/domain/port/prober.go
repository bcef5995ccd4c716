package port

import "context"

// DimensionProber reports native media dimensions without decoding
// frame payloads.
type DimensionProber interface {
	VideoDimensions(ctx context.Context, path string) (width, height int, err error)
	ImageDimensions(path string) (width, height int, err error)
}
