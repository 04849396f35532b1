package interfaces

type (
	// Notifier is a fire-and-forget alert sink. Implementations return false
	// on delivery failure; callers log and move on.
	Notifier interface {
		SendAlert(message string) bool
	}
)
