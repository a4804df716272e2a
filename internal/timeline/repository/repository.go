package repository

import (
	"context"
	"errors"
	"fmt"

	"settlement_backend/internal/timeline/domain"
	"settlement_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionTimeline is the read model the timeline service works on:
// a transaction's identity plus its stored milestones in canonical order.
type TransactionTimeline struct {
	TransactionID   uuid.UUID
	PropertyAddress string
	Status          string
	Milestones      []domain.Milestone
}

// Repository provides read access to transaction timelines. The milestone
// rows live with the transactions module; this repository only reads them.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new timeline repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetTimeline loads one transaction's timeline.
func (r *Repository) GetTimeline(ctx context.Context, transactionID uuid.UUID) (*TransactionTimeline, error) {
	var tl TransactionTimeline
	err := r.pool.QueryRow(ctx,
		`SELECT id, property_address, status FROM transactions WHERE id = $1`,
		transactionID,
	).Scan(&tl.TransactionID, &tl.PropertyAddress, &tl.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, fmt.Errorf("failed to get transaction timeline: %w", err)
	}

	milestones, err := r.listMilestones(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	tl.Milestones = milestones

	return &tl, nil
}

// ListOpenTimelines loads the timelines of every transaction not yet in a
// terminal status. Terminal transactions are excluded here so cross-cutting
// upcoming/overdue queries never flag them.
func (r *Repository) ListOpenTimelines(ctx context.Context) ([]TransactionTimeline, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.property_address, t.status,
			m.name, m.target_date, m.completed_at, m.critical
		FROM transactions t
		JOIN milestones m ON m.transaction_id = t.id
		WHERE t.status NOT IN ('settled', 'cancelled')
		ORDER BY t.created_at, m.sort_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open timelines: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*TransactionTimeline)
	order := make([]uuid.UUID, 0)
	for rows.Next() {
		var (
			id      uuid.UUID
			address string
			status  string
			ms      domain.Milestone
		)
		if err := rows.Scan(&id, &address, &status, &ms.Name, &ms.TargetDate, &ms.CompletedAt, &ms.Critical); err != nil {
			return nil, fmt.Errorf("failed to scan timeline row: %w", err)
		}

		tl, ok := byID[id]
		if !ok {
			tl = &TransactionTimeline{TransactionID: id, PropertyAddress: address, Status: status}
			byID[id] = tl
			order = append(order, id)
		}
		tl.Milestones = append(tl.Milestones, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]TransactionTimeline, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (r *Repository) listMilestones(ctx context.Context, transactionID uuid.UUID) ([]domain.Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, target_date, completed_at, critical
		FROM milestones
		WHERE transaction_id = $1
		ORDER BY sort_order`,
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	milestones := make([]domain.Milestone, 0)
	for rows.Next() {
		var ms domain.Milestone
		if err := rows.Scan(&ms.Name, &ms.TargetDate, &ms.CompletedAt, &ms.Critical); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, ms)
	}

	return milestones, rows.Err()
}
