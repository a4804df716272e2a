package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement_backend/internal/inspections/transport"
	"settlement_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking represents the inspection booking database model
type Booking struct {
	ID             uuid.UUID `db:"id"`
	TransactionID  uuid.UUID `db:"transaction_id"`
	InspectionType string    `db:"inspection_type"`
	ProviderID     string    `db:"provider_id"`
	ScheduledDate  time.Time `db:"scheduled_date"`
	CostCents      int64     `db:"cost_cents"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Result represents the inspection result database model. Rows are
// append-only: a re-inspection inserts a new row.
type Result struct {
	ID                   uuid.UUID `db:"id"`
	TransactionID        uuid.UUID `db:"transaction_id"`
	BookingID            uuid.UUID `db:"booking_id"`
	InspectionType       string    `db:"inspection_type"`
	OverallRating        string    `db:"overall_rating"`
	CriticalIssues       []string  `db:"critical_issues"`
	EstimatedRepairCents *int64    `db:"estimated_repair_cents"`
	ReportURL            string    `db:"report_url"`
	Summary              string    `db:"summary"`
	RecordedAt           time.Time `db:"recorded_at"`
}

// Repository provides database operations for inspection bookings and results
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new inspections repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertBooking inserts a booking if none exists for this transaction and
// inspection type, otherwise returns the existing row untouched. This makes
// re-running the booking step idempotent.
func (r *Repository) UpsertBooking(ctx context.Context, booking *Booking) (*Booking, bool, error) {
	query := `
		INSERT INTO inspection_bookings (
			id, transaction_id, inspection_type, provider_id, scheduled_date,
			cost_cents, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_id, inspection_type) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		booking.ID, booking.TransactionID, booking.InspectionType, booking.ProviderID,
		booking.ScheduledDate, booking.CostCents, booking.Status, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert booking: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return booking, true, nil
	}

	existing, err := r.GetBooking(ctx, booking.TransactionID, booking.InspectionType)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

const bookingColumns = `id, transaction_id, inspection_type, provider_id, scheduled_date,
	cost_cents, status, created_at, updated_at`

// GetBooking retrieves a booking by transaction and inspection type
func (r *Repository) GetBooking(ctx context.Context, transactionID uuid.UUID, inspectionType string) (*Booking, error) {
	var b Booking
	err := r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM inspection_bookings
		WHERE transaction_id = $1 AND inspection_type = $2`,
		transactionID, inspectionType,
	).Scan(&b.ID, &b.TransactionID, &b.InspectionType, &b.ProviderID, &b.ScheduledDate,
		&b.CostCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, bookingScanErr(err)
	}
	return &b, nil
}

// bookingScanErr keeps NotFound reserved for a genuinely missing row; a
// transient database failure must not masquerade as a missing booking.
func bookingScanErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("inspection booking not found")
	}
	return fmt.Errorf("failed to get booking: %w", err)
}

// ListBookings retrieves all bookings for a transaction
func (r *Repository) ListBookings(ctx context.Context, transactionID uuid.UUID) ([]Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM inspection_bookings
		WHERE transaction_id = $1 ORDER BY created_at`,
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	items := make([]Booking, 0)
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.TransactionID, &b.InspectionType, &b.ProviderID, &b.ScheduledDate,
			&b.CostCents, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, b)
	}

	return items, rows.Err()
}

// bookingTransitions declares the legal booking status transitions.
var bookingTransitions = map[string][]string{
	"pending": {"booked", "failed"},
	"booked":  {"completed", "failed"},
}

// UpdateBookingStatus transitions a booking's status. Illegal transitions
// are conflicts; bookings are otherwise immutable once booked.
func (r *Repository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, from, to string, now time.Time) error {
	legal := false
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			legal = true
			break
		}
	}
	if !legal {
		return apperr.Conflict(fmt.Sprintf("cannot transition booking from %s to %s", from, to))
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE inspection_bookings SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		bookingID, to, now, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("booking status changed concurrently")
	}

	return nil
}

// InsertResult appends a new immutable inspection result row.
func (r *Repository) InsertResult(ctx context.Context, result *Result) error {
	query := `
		INSERT INTO inspection_results (
			id, transaction_id, booking_id, inspection_type, overall_rating,
			critical_issues, estimated_repair_cents, report_url, summary, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		result.ID, result.TransactionID, result.BookingID, result.InspectionType, result.OverallRating,
		result.CriticalIssues, result.EstimatedRepairCents, result.ReportURL, result.Summary, result.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inspection result: %w", err)
	}

	return nil
}

// ListResults retrieves all results for a transaction. When several results
// exist for the same inspection type (re-inspection) all are returned,
// oldest first.
func (r *Repository) ListResults(ctx context.Context, transactionID uuid.UUID) ([]Result, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, booking_id, inspection_type, overall_rating,
			critical_issues, estimated_repair_cents, report_url, summary, recorded_at
		FROM inspection_results
		WHERE transaction_id = $1
		ORDER BY recorded_at`,
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspection results: %w", err)
	}
	defer rows.Close()

	items := make([]Result, 0)
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.ID, &res.TransactionID, &res.BookingID, &res.InspectionType, &res.OverallRating,
			&res.CriticalIssues, &res.EstimatedRepairCents, &res.ReportURL, &res.Summary, &res.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inspection result: %w", err)
		}
		items = append(items, res)
	}

	return items, rows.Err()
}

// ToResponse converts a Booking to its transport representation
func (b *Booking) ToResponse() transport.BookingResponse {
	return transport.BookingResponse{
		ID:             b.ID,
		TransactionID:  b.TransactionID,
		InspectionType: b.InspectionType,
		ProviderID:     b.ProviderID,
		ScheduledDate:  b.ScheduledDate,
		CostCents:      b.CostCents,
		Status:         transport.BookingStatus(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

// ToResponse converts a Result to its transport representation
func (res *Result) ToResponse() transport.ResultResponse {
	return transport.ResultResponse{
		ID:                   res.ID,
		TransactionID:        res.TransactionID,
		InspectionType:       res.InspectionType,
		OverallRating:        transport.OverallRating(res.OverallRating),
		CriticalIssues:       res.CriticalIssues,
		EstimatedRepairCents: res.EstimatedRepairCents,
		ReportURL:            res.ReportURL,
		Summary:              res.Summary,
		RecordedAt:           res.RecordedAt,
	}
}
