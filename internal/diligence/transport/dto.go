package transport

import (
	"time"

	"settlement_backend/internal/diligence/domain"
	"settlement_backend/internal/diligence/repository"

	"github.com/google/uuid"
)

// SupplyDecisionRequest is the request body for resuming a run suspended at
// the buyer-decision wait point.
type SupplyDecisionRequest struct {
	Decision          string   `json:"decision" validate:"required,oneof=proceed negotiate withdraw"`
	Notes             string   `json:"notes" validate:"max=5000"`
	NegotiationPoints []string `json:"negotiationPoints" validate:"dive,min=1,max=1000"`
}

// RunResponse is the response body for a workflow run
type RunResponse struct {
	ID            uuid.UUID                  `json:"id"`
	TransactionID uuid.UUID                  `json:"transactionId"`
	State         string                     `json:"state"`
	Awaiting      *string                    `json:"awaiting,omitempty"`
	Assessment    *domain.Assessment         `json:"assessment,omitempty"`
	Decision      *repository.DecisionRecord `json:"decision,omitempty"`
	Outcome       *repository.OutcomeRecord  `json:"outcome,omitempty"`
	FailedStep    *string                    `json:"failedStep,omitempty"`
	FailReason    *string                    `json:"failReason,omitempty"`
	Version       int                        `json:"version"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}

// RunListResponse lists a transaction's workflow runs
type RunListResponse struct {
	Items []RunResponse `json:"items"`
	Total int           `json:"total"`
}

// FromRun converts a repository run to its transport representation
func FromRun(run *repository.Run) RunResponse {
	return RunResponse{
		ID:            run.ID,
		TransactionID: run.TransactionID,
		State:         run.State,
		Awaiting:      run.Awaiting,
		Assessment:    run.Context.Assessment,
		Decision:      run.Context.Decision,
		Outcome:       run.Context.Outcome,
		FailedStep:    run.FailedStep,
		FailReason:    run.FailReason,
		Version:       run.Version,
		CreatedAt:     run.CreatedAt,
		UpdatedAt:     run.UpdatedAt,
	}
}
