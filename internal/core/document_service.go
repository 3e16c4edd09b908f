package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document type codes used for human-readable references.
const (
	DocTypePurchaseOrder = "PO"
	DocTypeConsignment   = "CN"
)

// DocumentService issues gapless, per-year document references such as
// PO-2026-00001. Numbers are only consumed inside committed transactions, so
// a rolled-back operation never burns one.
type DocumentService interface {
	// NextDocumentNumber issues a reference in its own transaction. Use for
	// standalone calls.
	NextDocumentNumber(ctx context.Context, docType string, year int) (string, error)

	// NextDocumentNumberTx issues a reference using an existing transaction.
	// Use when the caller controls the transaction boundary so the reference
	// and the document INSERT are fully atomic.
	NextDocumentNumberTx(ctx context.Context, tx pgx.Tx, docType string, year int) (string, error)
}

type documentService struct {
	pool *pgxpool.Pool
}

func NewDocumentService(pool *pgxpool.Pool) DocumentService {
	return &documentService{pool: pool}
}

func (s *documentService) NextDocumentNumber(ctx context.Context, docType string, year int) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextNumberWithTx(ctx, tx, docType, year)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return number, nil
}

func (s *documentService) NextDocumentNumberTx(ctx context.Context, tx pgx.Tx, docType string, year int) (string, error) {
	return nextNumberWithTx(ctx, tx, docType, year)
}

// nextNumberWithTx bumps the per-type, per-year counter under row lock. The
// upsert serializes concurrent callers on the sequence row, which is what
// keeps the numbering gapless.
func nextNumberWithTx(ctx context.Context, tx pgx.Tx, docType string, year int) (string, error) {
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		docType, year,
	).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate document number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%05d", docType, year, lastNumber), nil
}
