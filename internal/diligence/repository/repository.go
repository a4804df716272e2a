package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"settlement_backend/internal/diligence/domain"
	"settlement_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunContext is the growing context object carried between workflow steps.
// It is checkpointed as JSONB after every step so a process restart resumes
// from the last committed state.
type RunContext struct {
	TransactionID      uuid.UUID          `json:"transactionId"`
	PropertyAddress    string             `json:"propertyAddress"`
	PurchasePriceCents int64              `json:"purchasePriceCents"`
	PropertyType       string             `json:"propertyType"`
	IsStrata           bool               `json:"isStrata"`
	PlannedInspections []string           `json:"plannedInspections,omitempty"`
	InspectionDue      *time.Time         `json:"inspectionDue,omitempty"`
	Assessment         *domain.Assessment `json:"assessment,omitempty"`
	Decision           *DecisionRecord    `json:"decision,omitempty"`
	Outcome            *OutcomeRecord     `json:"outcome,omitempty"`
}

// DecisionRecord is the buyer's captured decision.
type DecisionRecord struct {
	Decision          string   `json:"decision"`
	Notes             string   `json:"notes,omitempty"`
	NegotiationPoints []string `json:"negotiationPoints,omitempty"`
}

// OutcomeRecord is the finalized result of a run.
type OutcomeRecord struct {
	Status            string   `json:"status"`
	NextSteps         []string `json:"nextSteps"`
	NotificationsSent int      `json:"notificationsSent"`
}

// Run represents the workflow run database model
type Run struct {
	ID            uuid.UUID  `db:"id"`
	TransactionID uuid.UUID  `db:"transaction_id"`
	State         string     `db:"state"`
	Awaiting      *string    `db:"awaiting"`
	Context       RunContext `db:"context"`
	FailedStep    *string    `db:"failed_step"`
	FailReason    *string    `db:"fail_reason"`
	Version       int        `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Assessment is the persisted, append-only risk assessment record.
type Assessment struct {
	ID            uuid.UUID
	RunID         uuid.UUID
	TransactionID uuid.UUID
	Payload       domain.Assessment
	CreatedAt     time.Time
}

// Repository provides database operations for workflow runs
type Repository struct {
	pool *pgxpool.Pool
}

const runNotFoundMsg = "workflow run not found"

// New creates a new diligence repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRun inserts a new workflow run. A transaction may have at most one
// run outside a terminal state; the partial unique index enforces it and a
// violation surfaces as a conflict.
func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	contextJSON, err := json.Marshal(run.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal run context: %w", err)
	}

	query := `
		INSERT INTO workflow_runs (
			id, transaction_id, state, awaiting, context, failed_step, fail_reason,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		run.ID, run.TransactionID, run.State, run.Awaiting, contextJSON,
		run.FailedStep, run.FailReason, run.Version, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("transaction already has an active due-diligence run")
		}
		return fmt.Errorf("failed to create workflow run: %w", err)
	}

	return nil
}

const runColumns = `id, transaction_id, state, awaiting, context, failed_step, fail_reason,
	version, created_at, updated_at`

func scanRun(row pgx.Row) (*Run, error) {
	var (
		run         Run
		contextJSON []byte
	)
	err := row.Scan(
		&run.ID, &run.TransactionID, &run.State, &run.Awaiting, &contextJSON,
		&run.FailedStep, &run.FailReason, &run.Version, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contextJSON, &run.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run context: %w", err)
	}
	return &run, nil
}

// GetRun retrieves a workflow run by ID
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(r.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM workflow_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(runNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get workflow run: %w", err)
	}
	return run, nil
}

// GetActiveRunByTransaction retrieves the transaction's run that is not yet
// in a terminal state, if any.
func (r *Repository) GetActiveRunByTransaction(ctx context.Context, transactionID uuid.UUID) (*Run, error) {
	run, err := scanRun(r.pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM workflow_runs
		WHERE transaction_id = $1 AND state NOT IN ('finalized', 'failed', 'cancelled')
		ORDER BY created_at DESC LIMIT 1`,
		transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(runNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get active workflow run: %w", err)
	}
	return run, nil
}

// ListRunsByTransaction retrieves all runs for a transaction, newest first.
func (r *Repository) ListRunsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+runColumns+` FROM workflow_runs
		WHERE transaction_id = $1 ORDER BY created_at DESC`,
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs: %w", err)
	}
	defer rows.Close()

	items := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *run)
	}

	return items, rows.Err()
}

// UpdateRun checkpoints a run's state, awaiting flag, context, and failure
// fields under an optimistic concurrency check. Per-run mutations are
// serialized through the version column.
func (r *Repository) UpdateRun(ctx context.Context, run *Run) error {
	contextJSON, err := json.Marshal(run.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal run context: %w", err)
	}

	query := `
		UPDATE workflow_runs
		SET state = $2, awaiting = $3, context = $4, failed_step = $5,
			fail_reason = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $8`

	tag, err := r.pool.Exec(ctx, query,
		run.ID, run.State, run.Awaiting, contextJSON, run.FailedStep,
		run.FailReason, run.UpdatedAt, run.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetRun(ctx, run.ID); getErr != nil {
			return getErr
		}
		return apperr.Conflict("workflow run was modified concurrently, re-fetch and retry")
	}

	run.Version++
	return nil
}

// InsertAssessment appends a risk assessment record. Assessments are
// immutable history; rescoring appends a new row.
func (r *Repository) InsertAssessment(ctx context.Context, assessment *Assessment) error {
	payload, err := json.Marshal(assessment.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO risk_assessments (id, run_id, transaction_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		assessment.ID, assessment.RunID, assessment.TransactionID, payload, assessment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert risk assessment: %w", err)
	}

	return nil
}

// InsertDecision records the buyer's decision for a run. One decision per
// cycle; a duplicate is a conflict.
func (r *Repository) InsertDecision(ctx context.Context, runID, transactionID uuid.UUID, record DecisionRecord, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO decisions (id, run_id, transaction_id, decision, notes, negotiation_points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), runID, transactionID, record.Decision, record.Notes, record.NegotiationPoints, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("decision already captured for this run")
		}
		return fmt.Errorf("failed to insert decision: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
