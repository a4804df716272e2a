package service

import (
	"context"
	"fmt"
	"time"

	"settlement_backend/internal/diligence/domain"
	"settlement_backend/internal/diligence/repository"
	"settlement_backend/internal/events"
	inspectiondomain "settlement_backend/internal/inspections/domain"
	timelinedomain "settlement_backend/internal/timeline/domain"
	"settlement_backend/platform/apperr"
	"settlement_backend/platform/clock"
	"settlement_backend/platform/logger"

	"github.com/google/uuid"
)

// Run states. Transitions are strictly linear; finalized, failed, and
// cancelled are terminal. A negotiation outcome does not loop the workflow:
// it finalizes the current cycle and any follow-up diligence is a new run.
const (
	StateInitialized        = "initialized"
	StateInspectionsPlanned = "inspections_planned"
	StateAwaitingResults    = "awaiting_results"
	StateRiskScored         = "risk_scored"
	StateDecisionCaptured   = "decision_captured"
	StateFinalized          = "finalized"
	StateFailed             = "failed"
	StateCancelled          = "cancelled"
)

// Wait points where a run suspends for external input.
const (
	AwaitingInspectionResults = "inspection_results"
	AwaitingBuyerDecision     = "buyer_decision"
)

// Step identifiers reported on failure.
const (
	stepPlanInspections = "plan_inspections"
	stepScoreRisk       = "score_risk"
	stepFinalize        = "finalize"
)

// RunStore persists workflow runs. Satisfied by the diligence repository;
// faked in tests.
type RunStore interface {
	CreateRun(ctx context.Context, run *repository.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*repository.Run, error)
	GetActiveRunByTransaction(ctx context.Context, transactionID uuid.UUID) (*repository.Run, error)
	ListRunsByTransaction(ctx context.Context, transactionID uuid.UUID) ([]repository.Run, error)
	UpdateRun(ctx context.Context, run *repository.Run) error
	InsertAssessment(ctx context.Context, assessment *repository.Assessment) error
	InsertDecision(ctx context.Context, runID, transactionID uuid.UUID, record repository.DecisionRecord, now time.Time) error
}

// TransactionFacts is the engine's read model of a transaction.
type TransactionFacts struct {
	ID                 uuid.UUID
	PropertyAddress    string
	PurchasePriceCents int64
	PropertyType       string
	IsStrata           bool
	Status             string
	Terminal           bool
}

// Transactions provides the minimal transaction capabilities the engine
// needs from the transactions module.
type Transactions interface {
	Facts(ctx context.Context, id uuid.UUID) (*TransactionFacts, error)
	SetMilestoneTarget(ctx context.Context, id uuid.UUID, milestone string, target time.Time) error
	ApplyOutcome(ctx context.Context, id uuid.UUID, outcomeStatus string) error
}

// BookingSummary is the engine's view of a confirmed inspection booking.
type BookingSummary struct {
	InspectionType string
	ScheduledDate  time.Time
}

// Inspections provides the booking and result capabilities the engine needs
// from the inspections module.
type Inspections interface {
	Book(ctx context.Context, transactionID uuid.UUID, propertyType string, isStrata bool) ([]BookingSummary, error)
	AllResultsIn(ctx context.Context, transactionID uuid.UUID) (bool, error)
	Results(ctx context.Context, transactionID uuid.UUID) ([]domain.ResultInput, error)
}

// DeadlineScheduler schedules the awaiting-results deadline check. A nil
// scheduler disables deadline tracking (tests, local development without
// redis).
type DeadlineScheduler interface {
	ScheduleResultsDeadline(ctx context.Context, runID, transactionID uuid.UUID, runAt time.Time) error
}

// Engine orchestrates the due-diligence workflow: initialize timeline →
// plan and book inspections → await results → score risk → capture decision
// → finalize. Each step checkpoints the run context before the next step
// runs, and every step is idempotent for a given input.
type Engine struct {
	runs            RunStore
	transactions    Transactions
	inspections     Inspections
	deadlines       DeadlineScheduler
	eventBus        events.Bus
	clk             clock.Clock
	log             *logger.Logger
	resultsDeadline time.Duration
}

// NewEngine creates a new workflow engine.
func NewEngine(
	runs RunStore,
	transactions Transactions,
	inspections Inspections,
	deadlines DeadlineScheduler,
	eventBus events.Bus,
	clk clock.Clock,
	log *logger.Logger,
	resultsDeadline time.Duration,
) *Engine {
	return &Engine{
		runs:            runs,
		transactions:    transactions,
		inspections:     inspections,
		deadlines:       deadlines,
		eventBus:        eventBus,
		clk:             clk,
		log:             log,
		resultsDeadline: resultsDeadline,
	}
}

// StartRun begins a due-diligence cycle for a transaction: it creates the
// run, plans and books the required inspections, and suspends at the
// awaiting-results wait point. At most one active run per transaction.
func (e *Engine) StartRun(ctx context.Context, transactionID uuid.UUID) (*repository.Run, error) {
	facts, err := e.transactions.Facts(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if facts.Terminal {
		return nil, apperr.Conflict("transaction is in a terminal status")
	}

	if existing, err := e.runs.GetActiveRunByTransaction(ctx, transactionID); err == nil && existing != nil {
		return nil, apperr.Conflict("transaction already has an active due-diligence run")
	} else if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	now := e.clk.Now()
	run := &repository.Run{
		ID:            uuid.New(),
		TransactionID: transactionID,
		State:         StateInitialized,
		Context: repository.RunContext{
			TransactionID:      facts.ID,
			PropertyAddress:    facts.PropertyAddress,
			PurchasePriceCents: facts.PurchasePriceCents,
			PropertyType:       facts.PropertyType,
			IsStrata:           facts.IsStrata,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	e.log.WorkflowStep(run.ID.String(), "initialize", run.State)

	bookings, err := e.inspections.Book(ctx, transactionID, facts.PropertyType, facts.IsStrata)
	if err != nil {
		return run, e.failRun(ctx, run, stepPlanInspections, err)
	}
	if err := validateBookings(bookings); err != nil {
		return run, e.failRun(ctx, run, stepPlanInspections, err)
	}

	inspectionDue := latestScheduledDate(bookings)
	if err := e.transactions.SetMilestoneTarget(ctx, transactionID, timelinedomain.MilestoneInspectionDue, inspectionDue); err != nil {
		return run, e.failRun(ctx, run, stepPlanInspections, err)
	}

	run.Context.PlannedInspections = bookingTypes(bookings)
	run.Context.InspectionDue = &inspectionDue
	if err := e.transition(ctx, run, StateInspectionsPlanned, nil); err != nil {
		return run, err
	}

	if err := e.suspend(ctx, run, StateAwaitingResults, AwaitingInspectionResults); err != nil {
		return run, err
	}

	if e.deadlines != nil {
		deadline := e.clk.Now().Add(e.resultsDeadline)
		if err := e.deadlines.ScheduleResultsDeadline(ctx, run.ID, transactionID, deadline); err != nil {
			// Deadline tracking is advisory; the run stays validly suspended.
			e.log.Warn("failed to schedule results deadline", "run_id", run.ID.String(), "error", err.Error())
		}
	}

	return run, nil
}

// ResumeOnResults advances a run suspended at awaiting_results once every
// booked inspection has a terminal result. Safe to call on every recorded
// result: it does nothing until the set is complete, and rescoring the same
// complete set produces the same assessment.
func (e *Engine) ResumeOnResults(ctx context.Context, transactionID uuid.UUID) error {
	run, err := e.runs.GetActiveRunByTransaction(ctx, transactionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if run.State != StateAwaitingResults {
		return nil
	}

	complete, err := e.inspections.AllResultsIn(ctx, transactionID)
	if err != nil {
		return err
	}
	if !complete {
		return nil
	}

	results, err := e.inspections.Results(ctx, transactionID)
	if err != nil {
		return e.failRun(ctx, run, stepScoreRisk, err)
	}

	assessment := domain.Score(results, run.Context.PurchasePriceCents)
	if err := validateAssessment(assessment); err != nil {
		return e.failRun(ctx, run, stepScoreRisk, err)
	}

	if err := e.runs.InsertAssessment(ctx, &repository.Assessment{
		ID:            uuid.New(),
		RunID:         run.ID,
		TransactionID: transactionID,
		Payload:       assessment,
		CreatedAt:     e.clk.Now(),
	}); err != nil {
		return e.failRun(ctx, run, stepScoreRisk, err)
	}

	run.Context.Assessment = &assessment
	return e.suspend(ctx, run, StateRiskScored, AwaitingBuyerDecision)
}

// SupplyDecision resumes a run suspended at the buyer-decision wait point,
// captures the decision, and finalizes the cycle. Returns the finalized
// outcome: status, next steps, and how many notifications go out.
func (e *Engine) SupplyDecision(ctx context.Context, runID uuid.UUID, record repository.DecisionRecord) (*repository.Run, error) {
	run, err := e.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.State != StateRiskScored || run.Awaiting == nil || *run.Awaiting != AwaitingBuyerDecision {
		return nil, apperr.Conflict(fmt.Sprintf("run is not awaiting a buyer decision (state %s)", run.State))
	}

	outcome, ok := domain.OutcomeFor(domain.Decision(record.Decision))
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown decision %q", record.Decision))
	}

	if err := e.runs.InsertDecision(ctx, run.ID, run.TransactionID, record, e.clk.Now()); err != nil {
		return nil, err
	}

	run.Context.Decision = &record
	if err := e.transition(ctx, run, StateDecisionCaptured, nil); err != nil {
		return nil, err
	}

	if err := validateOutcome(outcome); err != nil {
		return run, e.failRun(ctx, run, stepFinalize, err)
	}

	if err := e.transactions.ApplyOutcome(ctx, run.TransactionID, outcome.Status); err != nil {
		return run, e.failRun(ctx, run, stepFinalize, err)
	}

	recipients := domain.RecipientsFor(outcome.Status)
	run.Context.Outcome = &repository.OutcomeRecord{
		Status:            outcome.Status,
		NextSteps:         outcome.NextSteps,
		NotificationsSent: len(recipients),
	}
	if err := e.transition(ctx, run, StateFinalized, nil); err != nil {
		return nil, err
	}

	if e.eventBus != nil {
		e.eventBus.Publish(ctx, events.DiligenceRunFinalized{
			BaseEvent:       events.NewBaseEvent(),
			RunID:           run.ID,
			TransactionID:   run.TransactionID,
			PropertyAddress: run.Context.PropertyAddress,
			Outcome:         outcome.Status,
			NextSteps:       outcome.NextSteps,
		})
	}

	return run, nil
}

// Cancel explicitly ends a run. Already-recorded results and assessments
// are history and remain untouched.
func (e *Engine) Cancel(ctx context.Context, runID uuid.UUID) (*repository.Run, error) {
	run, err := e.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if isTerminalState(run.State) {
		return nil, apperr.Conflict(fmt.Sprintf("run is already %s", run.State))
	}

	if err := e.transition(ctx, run, StateCancelled, nil); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves a run by id.
func (e *Engine) GetRun(ctx context.Context, runID uuid.UUID) (*repository.Run, error) {
	return e.runs.GetRun(ctx, runID)
}

// ListRuns retrieves all of a transaction's runs, newest first.
func (e *Engine) ListRuns(ctx context.Context, transactionID uuid.UUID) ([]repository.Run, error) {
	return e.runs.ListRunsByTransaction(ctx, transactionID)
}

// HandleResultsOverdue reacts to a deadline firing for a run still stuck at
// awaiting_results. The timeline already classifies the Inspection Due
// milestone overdue once its date passes; this surfaces the condition in
// the logs rather than silently abandoning the run.
func (e *Engine) HandleResultsOverdue(ctx context.Context, runID uuid.UUID) error {
	run, err := e.runs.GetRun(ctx, runID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if run.State != StateAwaitingResults {
		return nil
	}

	e.log.Warn("due-diligence run overdue awaiting inspection results",
		"run_id", run.ID.String(),
		"transaction_id", run.TransactionID.String(),
	)
	return nil
}

// transition checkpoints the run in a new state.
func (e *Engine) transition(ctx context.Context, run *repository.Run, state string, awaiting *string) error {
	run.State = state
	run.Awaiting = awaiting
	run.UpdatedAt = e.clk.Now()
	if err := e.runs.UpdateRun(ctx, run); err != nil {
		return err
	}
	e.log.WorkflowStep(run.ID.String(), state, state)
	return nil
}

// suspend moves the run to a wait state and announces the suspension.
func (e *Engine) suspend(ctx context.Context, run *repository.Run, state, awaiting string) error {
	if err := e.transition(ctx, run, state, &awaiting); err != nil {
		return err
	}
	if e.eventBus != nil {
		e.eventBus.Publish(ctx, events.DiligenceRunSuspended{
			BaseEvent:     events.NewBaseEvent(),
			RunID:         run.ID,
			TransactionID: run.TransactionID,
			Awaiting:      awaiting,
		})
	}
	return nil
}

// failRun halts the run at the failing step without touching any state
// committed by earlier steps.
func (e *Engine) failRun(ctx context.Context, run *repository.Run, step string, cause error) error {
	reason := cause.Error()
	run.FailedStep = &step
	run.FailReason = &reason
	if err := e.transition(ctx, run, StateFailed, nil); err != nil {
		return err
	}
	e.log.WorkflowError(run.ID.String(), step, cause)
	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("workflow step %s failed: %s", step, reason), cause)
}

func isTerminalState(state string) bool {
	return state == StateFinalized || state == StateFailed || state == StateCancelled
}

// validateBookings checks the planning step's output contract: at least one
// booking, every type in the closed set, every booking dated.
func validateBookings(bookings []BookingSummary) error {
	if len(bookings) == 0 {
		return fmt.Errorf("planner produced no bookings")
	}
	for _, b := range bookings {
		if _, err := inspectiondomain.ParseInspectionType(b.InspectionType); err != nil {
			return err
		}
		if b.ScheduledDate.IsZero() {
			return fmt.Errorf("booking for %s has no scheduled date", b.InspectionType)
		}
	}
	return nil
}

// validateAssessment checks the scoring step's output contract.
func validateAssessment(assessment domain.Assessment) error {
	if assessment.OverallRisk.Rank() == 0 {
		return fmt.Errorf("assessment has unknown risk level %q", assessment.OverallRisk)
	}
	if assessment.RecommendedAction == "" {
		return fmt.Errorf("assessment has no recommended action")
	}
	if assessment.EstimatedImpactCents < 0 {
		return fmt.Errorf("assessment has negative impact")
	}
	return nil
}

// validateOutcome checks the finalize step's output contract.
func validateOutcome(outcome domain.Outcome) error {
	if outcome.Status == "" {
		return fmt.Errorf("outcome has no status")
	}
	if len(outcome.NextSteps) == 0 {
		return fmt.Errorf("outcome has no next steps")
	}
	return nil
}

func bookingTypes(bookings []BookingSummary) []string {
	types := make([]string, 0, len(bookings))
	for _, b := range bookings {
		types = append(types, b.InspectionType)
	}
	return types
}

func latestScheduledDate(bookings []BookingSummary) time.Time {
	var latest time.Time
	for _, b := range bookings {
		if b.ScheduledDate.After(latest) {
			latest = b.ScheduledDate
		}
	}
	return latest
}
