package domain

type Decision string

const (
	DecisionComplete Decision = "complete"
	DecisionReject   Decision = "reject"
	DecisionSkip     Decision = "skip"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionComplete, DecisionReject, DecisionSkip:
		return d, nil
	}
	return "", ErrInvalidDecision
}

// TaskStatus is the terminal status a task lands in after the decision.
func (d Decision) TaskStatus() TaskStatus {
	switch d {
	case DecisionComplete:
		return TaskApproved
	case DecisionReject:
		return TaskRejected
	case DecisionSkip:
		return TaskSkipped
	}
	return TaskPending
}
