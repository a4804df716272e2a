// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"settlement_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Transaction Domain Events
// =============================================================================

// TransactionCreated is published when a new property transaction is registered.
type TransactionCreated struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	PropertyID    string    `json:"propertyId"`
	BuyerID       uuid.UUID `json:"buyerId"`
	ContractDate  time.Time `json:"contractDate"`
}

func (e TransactionCreated) EventName() string { return "transactions.created" }

// TransactionStatusChanged is published on every transaction status transition.
type TransactionStatusChanged struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
}

func (e TransactionStatusChanged) EventName() string { return "transactions.status.changed" }

// MilestoneCompleted is published when a milestone is explicitly marked complete.
type MilestoneCompleted struct {
	BaseEvent
	TransactionID uuid.UUID `json:"transactionId"`
	Milestone     string    `json:"milestone"`
	CompletedAt   time.Time `json:"completedAt"`
}

func (e MilestoneCompleted) EventName() string { return "transactions.milestone.completed" }

// MilestoneReminderDue is published by the scheduler worker when a critical
// milestone's reminder comes due. The notification module subscribes to this.
type MilestoneReminderDue struct {
	BaseEvent
	TransactionID   uuid.UUID `json:"transactionId"`
	PropertyAddress string    `json:"propertyAddress"`
	Milestone       string    `json:"milestone"`
	TargetDate      time.Time `json:"targetDate"`
}

func (e MilestoneReminderDue) EventName() string { return "timeline.milestone.reminder" }

// =============================================================================
// Inspection Domain Events
// =============================================================================

// InspectionsBooked is published once the planner's booking requests have been
// confirmed with providers.
type InspectionsBooked struct {
	BaseEvent
	TransactionID   uuid.UUID `json:"transactionId"`
	InspectionTypes []string  `json:"inspectionTypes"`
}

func (e InspectionsBooked) EventName() string { return "inspections.booked" }

// InspectionResultRecorded is published when an inspector's report is recorded.
// The workflow engine subscribes to this to resume runs awaiting results.
type InspectionResultRecorded struct {
	BaseEvent
	TransactionID  uuid.UUID `json:"transactionId"`
	InspectionType string    `json:"inspectionType"`
	OverallRating  string    `json:"overallRating"`
}

func (e InspectionResultRecorded) EventName() string { return "inspections.result.recorded" }

// =============================================================================
// Due-Diligence Workflow Events
// =============================================================================

// DiligenceRunSuspended is published when a run pauses at a wait point
// (inspection results or buyer decision).
type DiligenceRunSuspended struct {
	BaseEvent
	RunID         uuid.UUID `json:"runId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Awaiting      string    `json:"awaiting"`
}

func (e DiligenceRunSuspended) EventName() string { return "diligence.run.suspended" }

// DiligenceRunFinalized is published when a due-diligence cycle reaches its
// terminal outcome. The notification module subscribes to this.
type DiligenceRunFinalized struct {
	BaseEvent
	RunID           uuid.UUID `json:"runId"`
	TransactionID   uuid.UUID `json:"transactionId"`
	PropertyAddress string    `json:"propertyAddress"`
	Outcome         string    `json:"outcome"`
	NextSteps       []string  `json:"nextSteps"`
}

func (e DiligenceRunFinalized) EventName() string { return "diligence.run.finalized" }

// DiligenceResultsOverdue is published by the scheduler worker when a run has
// sat in awaiting_results past the configured deadline.
type DiligenceResultsOverdue struct {
	BaseEvent
	RunID         uuid.UUID `json:"runId"`
	TransactionID uuid.UUID `json:"transactionId"`
}

func (e DiligenceResultsOverdue) EventName() string { return "diligence.results.overdue" }
