package notify

import (
	"context"
	"fmt"

	"feedback-backend/internal/models"
)

// Notifier publishes a message about newly submitted feedback.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

const previewLength = 280

// FormatFeedback renders a short, human-readable announcement of a submission.
func FormatFeedback(userID, message string, created models.Created) string {
	runes := []rune(message)
	if len(runes) > previewLength {
		message = string(runes[:previewLength]) + "…"
	}
	return fmt.Sprintf("New feedback %s\nUser: %s\nAt: %s\n\n%s",
		created.ID, userID, created.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"), message)
}
