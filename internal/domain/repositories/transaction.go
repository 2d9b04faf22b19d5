package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a database transaction.
// Repositories called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
