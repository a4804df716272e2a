package domain

import "time"

// Milestone is the classifier's input view of a stored milestone.
type Milestone struct {
	Name        string
	TargetDate  *time.Time
	CompletedAt *time.Time
	Critical    bool
}

// MilestoneView is a milestone with its derived status.
type MilestoneView struct {
	Name       string          `json:"name"`
	TargetDate *time.Time      `json:"targetDate,omitempty"`
	Status     MilestoneStatus `json:"status"`
	Critical   bool            `json:"critical"`
}

// Derive classifies each milestone against now, preserving input order.
func Derive(milestones []Milestone, now time.Time) []MilestoneView {
	views := make([]MilestoneView, 0, len(milestones))
	for _, ms := range milestones {
		views = append(views, MilestoneView{
			Name:       ms.Name,
			TargetDate: ms.TargetDate,
			Status:     Classify(ms.Name, ms.TargetDate, ms.CompletedAt, now),
			Critical:   ms.Critical,
		})
	}
	return views
}

// Next returns the first milestone still ahead: the first whose status is
// upcoming or pending. Nil when nothing remains.
func Next(views []MilestoneView) *MilestoneView {
	for i := range views {
		if views[i].Status == StatusUpcoming || views[i].Status == StatusPending {
			return &views[i]
		}
	}
	return nil
}

// Overdue returns all milestones classified overdue, preserving order.
func Overdue(views []MilestoneView) []MilestoneView {
	out := make([]MilestoneView, 0)
	for _, v := range views {
		if v.Status == StatusOverdue {
			out = append(out, v)
		}
	}
	return out
}

// Progress returns completed-count over total-count in [0,1].
// An empty timeline reports zero progress.
func Progress(views []MilestoneView) float64 {
	if len(views) == 0 {
		return 0
	}
	completed := 0
	for _, v := range views {
		if v.Status == StatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(views))
}
