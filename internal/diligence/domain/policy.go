package domain

// Action is the policy's recommended course of action.
type Action string

const (
	ActionProceed        Action = "proceed"
	ActionNegotiate      Action = "negotiate"
	ActionRequestRepairs Action = "request_repairs"
	ActionWithdraw       Action = "withdraw"
)

// Decision is the buyer's captured choice for a due-diligence cycle.
type Decision string

const (
	DecisionProceed   Decision = "proceed"
	DecisionNegotiate Decision = "negotiate"
	DecisionWithdraw  Decision = "withdraw"
)

// RecommendAction maps (risk level, repair-cost percentage) to an action.
// Tiers are checked highest severity first, and within a tier the risk-level
// and percentage conditions are an OR: either input alone can push the
// recommendation into a higher tier.
func RecommendAction(risk RiskLevel, repairCostPercentage float64) Action {
	switch {
	case risk == RiskCritical || repairCostPercentage > 5:
		return ActionWithdraw
	case risk == RiskHigh || repairCostPercentage > 2:
		return ActionRequestRepairs
	case risk == RiskMedium || repairCostPercentage > 0.5:
		return ActionNegotiate
	default:
		return ActionProceed
	}
}

// Outcome is the terminal result of a due-diligence cycle.
type Outcome struct {
	Status    string
	NextSteps []string
}

// Outcome statuses.
const (
	OutcomeCompleted   = "completed"
	OutcomeNegotiating = "negotiating"
	OutcomeWithdrawn   = "withdrawn"
)

// outcomeTable maps the buyer's decision to the cycle outcome. The mapping
// is fixed so identical decisions always produce identical outcomes, which
// keeps finalization auditable.
var outcomeTable = map[Decision]Outcome{
	DecisionProceed: {
		Status: OutcomeCompleted,
		NextSteps: []string{
			"Confirm unconditional finance approval",
			"Prepare for settlement with conveyancer",
			"Arrange building insurance from settlement date",
		},
	},
	DecisionNegotiate: {
		Status: OutcomeNegotiating,
		NextSteps: []string{
			"Contact selling agent with negotiation points",
			"Await vendor response",
			"Prepare alternative offer",
		},
	},
	DecisionWithdraw: {
		Status: OutcomeWithdrawn,
		NextSteps: []string{
			"Notify conveyancer of withdrawal",
			"Verify cooling-off period compliance",
			"Resume property search",
		},
	},
}

// OutcomeFor returns the fixed outcome for a buyer decision. The second
// return is false for a decision outside the closed set.
func OutcomeFor(decision Decision) (Outcome, bool) {
	outcome, ok := outcomeTable[decision]
	return outcome, ok
}

// RecipientsFor returns the logical notification recipients for an outcome
// status. The engine reports only these logical recipients and their count;
// delivery is the notification dispatcher's concern.
func RecipientsFor(outcomeStatus string) []string {
	switch outcomeStatus {
	case OutcomeCompleted:
		return []string{"buyer", "conveyancer", "agent"}
	case OutcomeNegotiating:
		return []string{"buyer", "agent"}
	case OutcomeWithdrawn:
		return []string{"buyer", "conveyancer"}
	default:
		return nil
	}
}
