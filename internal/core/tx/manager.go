// Package tx declares the transaction boundary the domain layer depends on.
package tx

import (
	"context"
)

// Manager runs fn in a transaction. Nested calls join the transaction already
// carried by ctx; an error from fn rolls it back.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also runs read-only snapshots, used by list queries so the
// count and the page see the same data.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
