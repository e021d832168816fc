package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BulkLoader writes many rows with the COPY protocol. It is used by the
// seeder for pivot tables and attribute values.
type BulkLoader struct {
	txManager *TxManager
}

// NewBulkLoader creates a bulk loader.
func NewBulkLoader(txManager *TxManager) *BulkLoader {
	return &BulkLoader{txManager: txManager}
}

// Copy inserts rows into table. It must run inside a transaction.
func (b *BulkLoader) Copy(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("copy into %s requires a transaction", table)
	}
	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Statement is one query of a batch.
type Statement struct {
	SQL  string
	Args []any
}

// ExecBatch sends statements in one round trip inside the current transaction.
func (b *BulkLoader) ExecBatch(ctx context.Context, stmts []Statement) error {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("batch requires a transaction")
	}

	batch := &pgx.Batch{}
	for _, s := range stmts {
		batch.Queue(s.SQL, s.Args...)
	}
	results := t.SendBatch(ctx, batch)
	defer results.Close()

	for i := range stmts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}
