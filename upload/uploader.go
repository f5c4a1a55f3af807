// Package upload implements artifact delivery with durable retry.
//
// An Uploader moves one pending artifact to the collection endpoint.
// The Engine wraps an Uploader with the delete-on-success-only rule and
// the periodic sweep that retries everything still on disk. Every
// failure mode (non-2xx status, timeout, transport error) is treated
// uniformly: the artifact stays in the pending store for the next sweep.
package upload

import (
	"context"

	"github.com/sayandeep-bot/spectosoft/types"
)

// Uploader delivers a single artifact. Send returns nil only when the
// remote confirmed receipt; the caller deletes the file on nil and must
// leave it in place on any error.
type Uploader interface {
	Send(ctx context.Context, path string, kind types.Kind) error
}
