package domain

// Action is a lifecycle command applied to a campaign.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionDelete  Action = "delete"
	ActionExpire  Action = "expire"
)

// transitions lists every legal (from, action) pair. Delete has no target
// status because the campaign is removed.
var transitions = map[Status]map[Action]Status{
	StatusPendingApproval: {
		ActionApprove: StatusActive,
		ActionReject:  StatusEnded,
		ActionExpire:  StatusEnded,
	},
	StatusActive: {
		ActionPause:  StatusPaused,
		ActionExpire: StatusEnded,
	},
	StatusPaused: {
		ActionResume: StatusActive,
		ActionExpire: StatusEnded,
	},
}

// NextStatus returns the status reached by applying a to a campaign in
// from, or ErrInvalidState when the table does not allow it.
func NextStatus(from Status, a Action) (Status, error) {
	if to, ok := transitions[from][a]; ok {
		return to, nil
	}
	return "", ErrInvalidState
}

// CanDelete reports whether a campaign in status s may be removed.
// ENDED is terminal and kept for historical reads.
func CanDelete(s Status) error {
	if !s.Valid() || s == StatusEnded {
		return ErrInvalidState
	}
	return nil
}

// LegalTransition reports whether a persisted from→to pair is allowed.
// An empty from stands for the initial submission.
func LegalTransition(from, to Status) bool {
	if from == "" {
		return to == StatusPendingApproval
	}
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}
