package enums

import "fmt"

// BasketLineType distinguishes new share purchases from ownership renewals.
type BasketLineType string

const (
	BasketLineTypeShare   BasketLineType = "share"
	BasketLineTypeRenewal BasketLineType = "renewal"
)

var validBasketLineTypes = []BasketLineType{
	BasketLineTypeShare,
	BasketLineTypeRenewal,
}

// String implements fmt.Stringer.
func (b BasketLineType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BasketLineType.
func (b BasketLineType) IsValid() bool {
	for _, candidate := range validBasketLineTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBasketLineType converts raw input into a BasketLineType.
func ParseBasketLineType(value string) (BasketLineType, error) {
	for _, candidate := range validBasketLineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid basket line type %q", value)
}
