package enums

// NotificationType labels what produced an in-app notification.
type NotificationType string

const (
	NotificationTypePurchaseConfirmed NotificationType = "purchase_confirmed"
	NotificationTypeRenewalConfirmed  NotificationType = "renewal_confirmed"
	NotificationTypeBallotResult      NotificationType = "ballot_result"
	NotificationTypeGeneral           NotificationType = "general"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePurchaseConfirmed,
	NotificationTypeRenewalConfirmed,
	NotificationTypeBallotResult,
	NotificationTypeGeneral,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}
