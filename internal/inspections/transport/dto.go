package transport

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus defines the lifecycle of an inspection booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusFailed    BookingStatus = "failed"
)

// OverallRating is the inspector's overall finding for one inspection
type OverallRating string

const (
	RatingPass        OverallRating = "pass"
	RatingMinorIssues OverallRating = "minor_issues"
	RatingMajorIssues OverallRating = "major_issues"
	RatingFail        OverallRating = "fail"
)

// RecordResultRequest is the request body for recording an inspection report
type RecordResultRequest struct {
	InspectionType       string        `json:"inspectionType" validate:"required"`
	OverallRating        OverallRating `json:"overallRating" validate:"required,oneof=pass minor_issues major_issues fail"`
	CriticalIssues       []string      `json:"criticalIssues" validate:"dive,min=1,max=1000"`
	EstimatedRepairCents *int64        `json:"estimatedRepairCents,omitempty" validate:"omitempty,min=0"`
	ReportURL            string        `json:"reportUrl" validate:"omitempty,url,max=1000"`
	Summary              string        `json:"summary" validate:"max=5000"`
}

// BookingResponse is the response body for an inspection booking
type BookingResponse struct {
	ID             uuid.UUID     `json:"id"`
	TransactionID  uuid.UUID     `json:"transactionId"`
	InspectionType string        `json:"inspectionType"`
	ProviderID     string        `json:"providerId,omitempty"`
	ScheduledDate  time.Time     `json:"scheduledDate"`
	CostCents      int64         `json:"costCents"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// ResultResponse is the response body for an inspection result
type ResultResponse struct {
	ID                   uuid.UUID     `json:"id"`
	TransactionID        uuid.UUID     `json:"transactionId"`
	InspectionType       string        `json:"inspectionType"`
	OverallRating        OverallRating `json:"overallRating"`
	CriticalIssues       []string      `json:"criticalIssues"`
	EstimatedRepairCents *int64        `json:"estimatedRepairCents,omitempty"`
	ReportURL            string        `json:"reportUrl,omitempty"`
	Summary              string        `json:"summary,omitempty"`
	RecordedAt           time.Time     `json:"recordedAt"`
}

// BookingListResponse lists a transaction's bookings
type BookingListResponse struct {
	Items []BookingResponse `json:"items"`
	Total int               `json:"total"`
}

// ResultListResponse lists a transaction's results
type ResultListResponse struct {
	Items []ResultResponse `json:"items"`
	Total int              `json:"total"`
}
