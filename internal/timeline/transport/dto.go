package transport

import (
	"settlement_backend/internal/timeline/domain"

	"github.com/google/uuid"
)

// TimelineResponse is the derived timeline for one transaction.
type TimelineResponse struct {
	TransactionID     uuid.UUID              `json:"transactionId"`
	Milestones        []domain.MilestoneView `json:"milestones"`
	NextMilestone     *domain.MilestoneView  `json:"nextMilestone,omitempty"`
	OverdueMilestones []domain.MilestoneView `json:"overdueMilestones"`
	Progress          float64                `json:"progress"`
}

// FlaggedMilestone is a milestone surfaced by a cross-transaction query.
type FlaggedMilestone struct {
	TransactionID   uuid.UUID            `json:"transactionId"`
	PropertyAddress string               `json:"propertyAddress"`
	Milestone       domain.MilestoneView `json:"milestone"`
}

// UpcomingMilestonesRequest is the query for upcoming milestones across
// all open transactions.
type UpcomingMilestonesRequest struct {
	WithinDays int `form:"withinDays" validate:"min=0,max=365"`
}

// FlaggedMilestonesResponse lists milestones flagged across transactions.
type FlaggedMilestonesResponse struct {
	Items []FlaggedMilestone `json:"items"`
	Total int                `json:"total"`
}
