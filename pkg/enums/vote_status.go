package enums

import "fmt"

// VoteStatus tracks whether a syndicate vote still accepts responses.
type VoteStatus string

const (
	VoteStatusOpen   VoteStatus = "open"
	VoteStatusClosed VoteStatus = "closed"
)

var validVoteStatuses = []VoteStatus{
	VoteStatusOpen,
	VoteStatusClosed,
}

// String implements fmt.Stringer.
func (v VoteStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VoteStatus.
func (v VoteStatus) IsValid() bool {
	for _, candidate := range validVoteStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoteStatus converts raw input into a VoteStatus.
func ParseVoteStatus(value string) (VoteStatus, error) {
	for _, candidate := range validVoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vote status %q", value)
}
