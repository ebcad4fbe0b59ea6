// Package notification delivers learner-facing alerts (unlocked
// achievements, level-ups) to logs and external webhooks.
package notification

import (
	"context"
	"errors"
	"log/slog"

	"investor-edu/internal/metrics"
)

// AlertLevel represents the importance of an alert.
type AlertLevel string

const (
	AlertInfo      AlertLevel = "INFO"
	AlertHighlight AlertLevel = "HIGHLIGHT"
	AlertWarning   AlertLevel = "WARNING"
)

// Alert is a notification about one profile.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Profile string     `json:"profile"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	slog.InfoContext(ctx, alert.Title, "component", "notify", "level", string(alert.Level),
		"profile", alert.Profile, "message", alert.Message)
	return nil
}

// Multi sends every alert to each notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Instrumented counts deliveries of the wrapped notifier under channel.
type Instrumented struct {
	Notifier
	Channel string
	Metrics *metrics.Metrics
}

func (i Instrumented) Send(ctx context.Context, alert Alert) error {
	err := i.Notifier.Send(ctx, alert)
	i.Metrics.Notified(i.Channel, err)
	return err
}
