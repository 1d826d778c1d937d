package enums

import "fmt"

// RenewalCycleStatus tracks whether a renewal term still accepts responses.
type RenewalCycleStatus string

const (
	RenewalCycleStatusOpen   RenewalCycleStatus = "open"
	RenewalCycleStatusClosed RenewalCycleStatus = "closed"
)

var validRenewalCycleStatuses = []RenewalCycleStatus{
	RenewalCycleStatusOpen,
	RenewalCycleStatusClosed,
}

// String implements fmt.Stringer.
func (r RenewalCycleStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RenewalCycleStatus.
func (r RenewalCycleStatus) IsValid() bool {
	for _, candidate := range validRenewalCycleStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRenewalCycleStatus converts raw input into a RenewalCycleStatus.
func ParseRenewalCycleStatus(value string) (RenewalCycleStatus, error) {
	for _, candidate := range validRenewalCycleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid renewal cycle status %q", value)
}
