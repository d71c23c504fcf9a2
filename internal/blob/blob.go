// Package blob abstracts where uploaded media bytes live. The operation
// layer only ever sees a retrievable reference and an opaque deletion handle,
// never which backend produced them.
package blob

import (
	"context"
)

// Backend stores and deletes raw media bytes.
//
// Store persists data under the suggested key and returns a reference the
// outside world can fetch (a server path or a URL) plus a handle usable later
// for deletion. Delete removes previously stored bytes and treats
// already-gone content as success.
type Backend interface {
	Store(ctx context.Context, data []byte, key string) (ref string, handle string, err error)
	Delete(ctx context.Context, handle string) error
}
