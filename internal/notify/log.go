package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// LogNotifier writes notifications to the log. It is the default when no
// e-mail delivery is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Publish(ctx context.Context, message string) error {
	log.WithField("notifier", "log").Info(message)
	return nil
}
