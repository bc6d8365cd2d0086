package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"live-trivia-service/internal/domain"
)

// BankArchive stores loaded question banks in Postgres as a content
// library. It holds bank content only, never session state.
type BankArchive struct {
	pool *pgxpool.Pool
}

func NewBankArchive(pool *pgxpool.Pool) *BankArchive {
	return &BankArchive{pool: pool}
}

// Save archives one bank. Questions go into a JSONB column alongside the
// raw source text.
func (a *BankArchive) Save(ctx context.Context, record domain.BankRecord) error {
	data, err := json.Marshal(record.Questions)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO banks (id, origin, subject, raw_text, data) VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.Origin, record.Subject, record.RawText, data)
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}

// Latest returns the most recently archived bank, or domain.ErrBankNotFound
// when the archive is empty.
func (a *BankArchive) Latest(ctx context.Context) (domain.BankRecord, error) {
	var (
		record domain.BankRecord
		data   []byte
	)
	err := a.pool.QueryRow(ctx,
		`SELECT id, origin, subject, raw_text, data FROM banks ORDER BY created_at DESC LIMIT 1`,
	).Scan(&record.ID, &record.Origin, &record.Subject, &record.RawText, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BankRecord{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.BankRecord{}, fmt.Errorf("load bank: %w", err)
	}
	if err := json.Unmarshal(data, &record.Questions); err != nil {
		return domain.BankRecord{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	return record, nil
}
