package research

import (
	"fmt"

	"github.com/google/uuid"
)

// NotificationKind identifies which outcome a notification reports.
type NotificationKind string

const (
	NotifyValidation NotificationKind = "validation"
	NotifyTransport  NotificationKind = "transport"
	NotifySuccess    NotificationKind = "success"
)

// maxNotifications bounds how many undismissed notifications a controller keeps.
const maxNotifications = 5

// Notification is a dismissible notice shown to the user after a submit attempt.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Destructive bool             `json:"destructive"`
}

func validationNotice() Notification {
	return Notification{
		ID:          uuid.New().String(),
		Kind:        NotifyValidation,
		Title:       "Missing Information",
		Description: "Please fill in both the search query and email address.",
		Destructive: true,
	}
}

func transportNotice() Notification {
	return Notification{
		ID:          uuid.New().String(),
		Kind:        NotifyTransport,
		Title:       "Error",
		Description: "Failed to generate report. Please try again.",
		Destructive: true,
	}
}

func successNotice(email string) Notification {
	return Notification{
		ID:          uuid.New().String(),
		Kind:        NotifySuccess,
		Title:       "Report Generated!",
		Description: fmt.Sprintf("Detailed report sent to %s", email),
	}
}
