package model

type SectorState string

const (
	SectorStatePending                 SectorState = "PENDING"
	SectorStateInProgress              SectorState = "IN_PROGRESS"
	SectorStateWaitingForVerification  SectorState = "WAITING_FOR_VERIFICATION"
	SectorStateWithDifferences         SectorState = "WITH_DIFFERENCES"
	SectorStateWaitingForSecondRecount SectorState = "WAITING_FOR_SECOND_RECOUNT"
	SectorStateComparingRecount        SectorState = "COMPARING_RECOUNT"
	SectorStateCompleted               SectorState = "COMPLETED"
	SectorStateCancelled               SectorState = "CANCELLED"
)

func (s SectorState) Terminal() bool {
	return s == SectorStateCompleted || s == SectorStateCancelled
}

// CounterState is the sub-state of one of the two counters of a sector.
type CounterState string

const (
	CounterStatePending               CounterState = "PENDING"
	CounterStateInProgress            CounterState = "IN_PROGRESS"
	CounterStateWaitingForPeer        CounterState = "WAITING_FOR_PEER"
	CounterStateWaitingForPeerRecount CounterState = "WAITING_FOR_PEER_RECOUNT"
	CounterStateComparingRecount      CounterState = "COMPARING_RECOUNT"
)

// Open reports whether the counter may still submit counts for the round.
func (s CounterState) Open() bool {
	return s == CounterStatePending || s == CounterStateInProgress
}

type ProductState string

const (
	ProductStateCounting     ProductState = "COUNTING"
	ProductStateAwaitingPeer ProductState = "AWAITING_PEER"
	ProductStateDifference   ProductState = "DIFFERENCE"
	ProductStateReconciled   ProductState = "RECONCILED"
)

// Outcome records the result of the last comparison of a sector.
type Outcome string

const (
	OutcomeNone        Outcome = "NONE"
	OutcomeDifferences Outcome = "DIFFERENCES"
	OutcomeReconciled  Outcome = "RECONCILED"
	OutcomeEscalated   Outcome = "ESCALATED"
	OutcomeCancelled   Outcome = "CANCELLED"
)

const (
	RoundCount   = 1
	RoundRecount = 2
)

// DeriveState computes the overall state of a sector count from its counter
// sub-states, its round and the outcome of its last comparison. It is the
// only definition of the overall state; nothing else may decide it.
func DeriveState(sc *SectorCount) SectorState {
	switch sc.Outcome {
	case OutcomeCancelled:
		return SectorStateCancelled
	case OutcomeReconciled:
		return SectorStateCompleted
	case OutcomeEscalated:
		return SectorStateWithDifferences
	}
	if !sc.Assigned() {
		return SectorStatePending
	}

	a, b := sc.CounterA.State, sc.CounterB.State
	if sc.Round < RoundRecount {
		switch {
		case a == CounterStatePending && b == CounterStatePending:
			return SectorStatePending
		case a == CounterStateWaitingForPeer || b == CounterStateWaitingForPeer:
			return SectorStateWaitingForVerification
		default:
			return SectorStateInProgress
		}
	}

	switch {
	case a == CounterStateComparingRecount && b == CounterStateComparingRecount:
		return SectorStateComparingRecount
	case a == CounterStateWaitingForPeerRecount || b == CounterStateWaitingForPeerRecount:
		return SectorStateWaitingForSecondRecount
	default:
		return SectorStateWithDifferences
	}
}
