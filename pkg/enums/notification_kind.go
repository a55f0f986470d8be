package enums

import "fmt"

// NotificationKind identifies the e-mail template requested from the
// notification API when a recipient is offline.
type NotificationKind string

const (
	NotificationKindJourneyUpdated   NotificationKind = "journey_updated"
	NotificationKindJourneyDeleted   NotificationKind = "journey_deleted"
	NotificationKindDailyGoalReached NotificationKind = "daily_goal_achieved"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindJourneyUpdated,
	NotificationKindJourneyDeleted,
	NotificationKindDailyGoalReached,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
