package auth

// State is the progress of a login, as seen by either party.
//
//	Registered → ChallengeIssued → Verified
//	                             ↘ Rejected
//
// Verified and Rejected are scoped to one attempt id, and are only reached from
// ChallengeIssued for that same attempt.
type State int

const (
	StateUnregistered State = iota
	StateRegistered
	StateChallengeIssued
	StateVerified
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateChallengeIssued:
		return "challenge issued"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal returns true for Verified and Rejected.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateRejected
}
