package enums

import "fmt"

// BallotType distinguishes race-day badge ballots from stable visit ballots.
type BallotType string

const (
	BallotTypeBadge       BallotType = "badge"
	BallotTypeStableVisit BallotType = "stable_visit"
)

var validBallotTypes = []BallotType{
	BallotTypeBadge,
	BallotTypeStableVisit,
}

// String implements fmt.Stringer.
func (b BallotType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BallotType.
func (b BallotType) IsValid() bool {
	for _, candidate := range validBallotTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBallotType converts raw input into a BallotType.
func ParseBallotType(value string) (BallotType, error) {
	for _, candidate := range validBallotTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ballot type %q", value)
}

// BallotStatus follows open -> closed -> drawn. Drawn is terminal.
type BallotStatus string

const (
	BallotStatusOpen   BallotStatus = "open"
	BallotStatusClosed BallotStatus = "closed"
	BallotStatusDrawn  BallotStatus = "drawn"
)

var validBallotStatuses = []BallotStatus{
	BallotStatusOpen,
	BallotStatusClosed,
	BallotStatusDrawn,
}

// String implements fmt.Stringer.
func (b BallotStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BallotStatus.
func (b BallotStatus) IsValid() bool {
	for _, candidate := range validBallotStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// BallotOutcome is the immutable per-entrant result of a draw.
type BallotOutcome string

const (
	BallotOutcomeWinner    BallotOutcome = "winner"
	BallotOutcomeNonWinner BallotOutcome = "non_winner"
)

var validBallotOutcomes = []BallotOutcome{
	BallotOutcomeWinner,
	BallotOutcomeNonWinner,
}

// String implements fmt.Stringer.
func (b BallotOutcome) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BallotOutcome.
func (b BallotOutcome) IsValid() bool {
	for _, candidate := range validBallotOutcomes {
		if candidate == b {
			return true
		}
	}
	return false
}
