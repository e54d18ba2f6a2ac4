// Package messages holds the title/body builders for event-derived
// notifications, keeping wording out of the kafka handlers.
package messages

import "fmt"

const (
	ContentPublishedTitle = "New content published"
	ContentPublishedBody  = "'%s' by %s is now live."

	ContentFlaggedTitle = "Content flagged for review"
	ContentFlaggedBody  = "'%s' was flagged: %s."

	WelcomeTitle = "Welcome aboard"
	WelcomeBody  = "Hi %s, your account is ready. Check the editor guide to get started."

	MaintenanceTitle = "Scheduled maintenance"
	MaintenanceBody  = "The platform will be unavailable during %s."
)

func ContentPublished(contentTitle, author string) (string, string) {
	return ContentPublishedTitle, fmt.Sprintf(ContentPublishedBody, contentTitle, author)
}

func ContentFlagged(contentTitle, reason string) (string, string) {
	return ContentFlaggedTitle, fmt.Sprintf(ContentFlaggedBody, contentTitle, reason)
}

func Welcome(name string) (string, string) {
	return WelcomeTitle, fmt.Sprintf(WelcomeBody, name)
}

func Maintenance(window string) (string, string) {
	return MaintenanceTitle, fmt.Sprintf(MaintenanceBody, window)
}
