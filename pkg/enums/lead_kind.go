package enums

import "fmt"

// LeadKind labels which public form produced a lead row.
type LeadKind string

const (
	LeadKindInterest LeadKind = "interest"
	LeadKindLead     LeadKind = "lead"
	LeadKindContact  LeadKind = "contact"
)

var validLeadKinds = []LeadKind{
	LeadKindInterest,
	LeadKindLead,
	LeadKindContact,
}

// String implements fmt.Stringer.
func (l LeadKind) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LeadKind.
func (l LeadKind) IsValid() bool {
	for _, candidate := range validLeadKinds {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLeadKind converts raw input into a LeadKind.
func ParseLeadKind(value string) (LeadKind, error) {
	for _, candidate := range validLeadKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead kind %q", value)
}
