package enums

import "fmt"

// NotificationKind labels an entry in a shop's notification feed.
type NotificationKind string

const (
	NotificationKindOrderReceived        NotificationKind = "order_received"
	NotificationKindOrderStatusChanged   NotificationKind = "order_status_changed"
	NotificationKindSubscriptionApproved NotificationKind = "subscription_approved"
	NotificationKindSubscriptionExpiring NotificationKind = "subscription_expiring"
	NotificationKindSubscriptionExpired  NotificationKind = "subscription_expired"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindOrderReceived,
	NotificationKindOrderStatusChanged,
	NotificationKindSubscriptionApproved,
	NotificationKindSubscriptionExpiring,
	NotificationKindSubscriptionExpired,
}

func (k NotificationKind) String() string {
	return string(k)
}

func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
