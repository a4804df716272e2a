// Package domain contains the pure milestone classification logic used by
// both timeline display and overdue detection. Nothing here touches storage
// or the network.
package domain

import "time"

// MilestoneStatus is the derived lifecycle state of a milestone.
type MilestoneStatus string

const (
	StatusCompleted MilestoneStatus = "completed"
	StatusUpcoming  MilestoneStatus = "upcoming"
	StatusPending   MilestoneStatus = "pending"
	StatusOverdue   MilestoneStatus = "overdue"
)

// Canonical milestone names, in timeline order.
const (
	MilestoneContractSigned     = "Contract Signed"
	MilestoneCoolingOffExpiry   = "Cooling Off Expiry"
	MilestoneFinanceApprovalDue = "Finance Approval Due"
	MilestoneInspectionDue      = "Inspection Due"
	MilestoneSettlement         = "Settlement"
)

// CanonicalOrder is the fixed display order of the milestone timeline.
var CanonicalOrder = []string{
	MilestoneContractSigned,
	MilestoneCoolingOffExpiry,
	MilestoneFinanceApprovalDue,
	MilestoneInspectionDue,
	MilestoneSettlement,
}

// ElapseBehavior describes what an uncompleted milestone becomes once its
// target date has passed.
type ElapseBehavior int

const (
	// ElapsesAsCompleted marks milestones that passively elapse: once the
	// date passes, the checkpoint has simply happened (contract date,
	// cooling-off expiry).
	ElapsesAsCompleted ElapseBehavior = iota
	// ElapsesAsOverdue marks "must happen by" milestones: an unmet date is a
	// problem (finance approval, inspections, settlement).
	ElapsesAsOverdue
)

// elapseTable declares per-milestone elapse semantics. Milestones not listed
// default to ElapsesAsOverdue, the conservative reading for any future
// "must happen by" checkpoint.
var elapseTable = map[string]ElapseBehavior{
	MilestoneContractSigned:     ElapsesAsCompleted,
	MilestoneCoolingOffExpiry:   ElapsesAsCompleted,
	MilestoneFinanceApprovalDue: ElapsesAsOverdue,
	MilestoneInspectionDue:      ElapsesAsOverdue,
	MilestoneSettlement:         ElapsesAsOverdue,
}

// criticalTable declares which milestones are critical-path.
var criticalTable = map[string]bool{
	MilestoneContractSigned:     false,
	MilestoneCoolingOffExpiry:   true,
	MilestoneFinanceApprovalDue: true,
	MilestoneInspectionDue:      false,
	MilestoneSettlement:         true,
}

// ElapseBehaviorFor returns the declared elapse semantics for a milestone name.
func ElapseBehaviorFor(name string) ElapseBehavior {
	if behavior, ok := elapseTable[name]; ok {
		return behavior
	}
	return ElapsesAsOverdue
}

// IsCritical reports whether a milestone name is on the critical path.
func IsCritical(name string) bool {
	return criticalTable[name]
}

// Classify derives a milestone's lifecycle state from its target date,
// completion timestamp, and the current time. It is total: every input
// combination maps to exactly one state.
//
//   - completedAt set: completed, regardless of dates
//   - no target date: pending (not yet scheduled)
//   - target date passed: completed or overdue per the milestone's elapse table
//   - otherwise: upcoming
func Classify(name string, targetDate, completedAt *time.Time, now time.Time) MilestoneStatus {
	if completedAt != nil {
		return StatusCompleted
	}
	if targetDate == nil {
		return StatusPending
	}
	if !targetDate.After(now) {
		if ElapseBehaviorFor(name) == ElapsesAsCompleted {
			return StatusCompleted
		}
		return StatusOverdue
	}
	return StatusUpcoming
}
