package db

import "context"

// Transactor runs repository calls made inside fn within one database
// transaction. Repositories pick the transaction up from the context.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
