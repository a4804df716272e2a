package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement_backend/internal/transactions/transport"
	"settlement_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transaction represents the property transaction database model
type Transaction struct {
	ID                 uuid.UUID  `db:"id"`
	PropertyID         string     `db:"property_id"`
	PropertyAddress    string     `db:"property_address"`
	PurchasePriceCents int64      `db:"purchase_price_cents"`
	PropertyType       string     `db:"property_type"`
	IsStrata           bool       `db:"is_strata"`
	BuyerID            uuid.UUID  `db:"buyer_id"`
	ContractDate       time.Time  `db:"contract_date"`
	CoolingOffExpiry   time.Time  `db:"cooling_off_expiry"`
	FinanceClause      bool       `db:"finance_clause"`
	FinanceApprovalDue *time.Time `db:"finance_approval_due"`
	SettlementDate     *time.Time `db:"settlement_date"`
	SettledAt          *time.Time `db:"settled_at"`
	Status             string     `db:"status"`
	Version            int        `db:"version"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// Milestone represents a dated checkpoint belonging to one transaction.
// Its lifecycle state is never stored; it is derived on read.
type Milestone struct {
	ID            uuid.UUID  `db:"id"`
	TransactionID uuid.UUID  `db:"transaction_id"`
	Name          string     `db:"name"`
	TargetDate    *time.Time `db:"target_date"`
	CompletedAt   *time.Time `db:"completed_at"`
	Critical      bool       `db:"critical"`
	SortOrder     int        `db:"sort_order"`
}

// Repository provides database operations for transactions and milestones
type Repository struct {
	pool *pgxpool.Pool
}

const transactionNotFoundMsg = "transaction not found"
const staleVersionMsg = "transaction was modified concurrently, re-fetch and retry"

// New creates a new transactions repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks database connectivity for health checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Create inserts a new transaction together with its seeded milestones
// in a single database transaction.
func (r *Repository) Create(ctx context.Context, txn *Transaction, milestones []Milestone) error {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	query := `
		INSERT INTO transactions (
			id, property_id, property_address, purchase_price_cents, property_type,
			is_strata, buyer_id, contract_date, cooling_off_expiry, finance_clause,
			finance_approval_due, settlement_date, settled_at, status, version,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)`

	_, err = dbTx.Exec(ctx, query,
		txn.ID, txn.PropertyID, txn.PropertyAddress, txn.PurchasePriceCents, txn.PropertyType,
		txn.IsStrata, txn.BuyerID, txn.ContractDate, txn.CoolingOffExpiry, txn.FinanceClause,
		txn.FinanceApprovalDue, txn.SettlementDate, txn.SettledAt, txn.Status, txn.Version,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	msQuery := `
		INSERT INTO milestones (id, transaction_id, name, target_date, completed_at, critical, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, ms := range milestones {
		if _, err := dbTx.Exec(ctx, msQuery,
			ms.ID, ms.TransactionID, ms.Name, ms.TargetDate, ms.CompletedAt, ms.Critical, ms.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to create milestone %q: %w", ms.Name, err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const transactionColumns = `id, property_id, property_address, purchase_price_cents, property_type,
	is_strata, buyer_id, contract_date, cooling_off_expiry, finance_clause,
	finance_approval_due, settlement_date, settled_at, status, version, created_at, updated_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var txn Transaction
	err := row.Scan(
		&txn.ID, &txn.PropertyID, &txn.PropertyAddress, &txn.PurchasePriceCents, &txn.PropertyType,
		&txn.IsStrata, &txn.BuyerID, &txn.ContractDate, &txn.CoolingOffExpiry, &txn.FinanceClause,
		&txn.FinanceApprovalDue, &txn.SettlementDate, &txn.SettledAt, &txn.Status, &txn.Version,
		&txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetByID retrieves a transaction by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(transactionNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// List retrieves transactions with optional status filtering and pagination
func (r *Repository) List(ctx context.Context, status *string, limit, offset int) ([]Transaction, int, error) {
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ($1::text IS NULL OR status = $1)`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	items := make([]Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		items = append(items, *txn)
	}

	return items, total, rows.Err()
}

// UpdateStatus transitions a transaction's status under an optimistic
// concurrency check. A stale expectedVersion yields apperr.Conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, expectedVersion int, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4`

	tag, err := r.pool.Exec(ctx, query, id, status, now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}

	return nil
}

// ScheduleSettlement sets or moves the settlement date and keeps the
// Settlement milestone's target date in sync.
func (r *Repository) ScheduleSettlement(ctx context.Context, id uuid.UUID, settlementDate time.Time, expectedVersion int, now time.Time) error {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	tag, err := dbTx.Exec(ctx, `
		UPDATE transactions
		SET settlement_date = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4`,
		id, settlementDate, now, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}

	if _, err := dbTx.Exec(ctx, `
		UPDATE milestones SET target_date = $3
		WHERE transaction_id = $1 AND name = $2`,
		id, "Settlement", settlementDate,
	); err != nil {
		return fmt.Errorf("failed to update settlement milestone: %w", err)
	}

	return dbTx.Commit(ctx)
}

// RecordSettlement records the actual settlement timestamp. The column is
// set-once: a second write is rejected as a conflict.
func (r *Repository) RecordSettlement(ctx context.Context, id uuid.UUID, settledAt time.Time, expectedVersion int, now time.Time) error {
	query := `
		UPDATE transactions
		SET settled_at = $2, status = 'settled', version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4 AND settled_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, settledAt, now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		txn, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if txn.SettledAt != nil {
			return apperr.Conflict("settlement already recorded")
		}
		return apperr.Conflict(staleVersionMsg)
	}

	return nil
}

// CompleteMilestone sets a milestone's completion timestamp. Completion is
// set-once; completing an already-completed milestone is a conflict.
func (r *Repository) CompleteMilestone(ctx context.Context, transactionID uuid.UUID, name string, completedAt time.Time) error {
	query := `
		UPDATE milestones SET completed_at = $3
		WHERE transaction_id = $1 AND name = $2 AND completed_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, transactionID, name, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete milestone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.milestoneExists(ctx, transactionID, name)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("milestone not found")
		}
		return apperr.Conflict("milestone already completed")
	}

	return nil
}

// SetMilestoneTarget sets a milestone's target date (e.g. Inspection Due once
// bookings are confirmed).
func (r *Repository) SetMilestoneTarget(ctx context.Context, transactionID uuid.UUID, name string, targetDate time.Time) error {
	query := `
		UPDATE milestones SET target_date = $3
		WHERE transaction_id = $1 AND name = $2`

	tag, err := r.pool.Exec(ctx, query, transactionID, name, targetDate)
	if err != nil {
		return fmt.Errorf("failed to set milestone target: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("milestone not found")
	}

	return nil
}

func (r *Repository) milestoneExists(ctx context.Context, transactionID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM milestones WHERE transaction_id = $1 AND name = $2)`,
		transactionID, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check milestone: %w", err)
	}
	return exists, nil
}

// staleOrMissing distinguishes a missing row from a version mismatch after a
// zero-row versioned update.
func (r *Repository) staleOrMissing(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperr.Conflict(staleVersionMsg)
}

// ToResponse converts a Transaction to its transport representation
func (t *Transaction) ToResponse() transport.TransactionResponse {
	return transport.TransactionResponse{
		ID:                 t.ID,
		PropertyID:         t.PropertyID,
		PropertyAddress:    t.PropertyAddress,
		PurchasePriceCents: t.PurchasePriceCents,
		PropertyType:       transport.PropertyType(t.PropertyType),
		IsStrata:           t.IsStrata,
		BuyerID:            t.BuyerID,
		ContractDate:       t.ContractDate,
		CoolingOffExpiry:   t.CoolingOffExpiry,
		FinanceClause:      t.FinanceClause,
		FinanceApprovalDue: t.FinanceApprovalDue,
		SettlementDate:     t.SettlementDate,
		SettledAt:          t.SettledAt,
		Status:             transport.TransactionStatus(t.Status),
		Version:            t.Version,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
