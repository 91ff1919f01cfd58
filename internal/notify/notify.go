// Package notify raises desktop notifications for classification results.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/engine"
)

const appName = "AquaAssist"

// Config toggles desktop notifications.
type Config struct {
	Enabled bool `yaml:"enabled" env:"AQUA_NOTIFY" env-default:"false"`
}

type sendFunc func(title, message string) error

// Notifier shows one notification per result. Severity 0 uses a plain
// notification; anything worse raises an alert with sound.
type Notifier struct {
	enabled bool
	lang    string
	logger  *zap.Logger

	notify sendFunc
	alert  sendFunc
}

func New(cfg Config, lang string, logger *zap.Logger) *Notifier {
	return &Notifier{
		enabled: cfg.Enabled,
		lang:    lang,
		logger:  logger.Named("notify"),
		notify:  func(t, m string) error { return beeep.Notify(t, m, "") },
		alert:   func(t, m string) error { return beeep.Alert(t, m, "") },
	}
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Result announces r. Notification failures are logged, never returned.
func (n *Notifier) Result(r engine.Result) {
	if !n.enabled {
		return
	}
	title := fmt.Sprintf("%s: %s", appName, r.Label)
	msg := r.Message(n.lang)

	send := n.notify
	if r.Advisory.Severity > 0 {
		send = n.alert
	}
	if err := send(title, msg); err != nil {
		n.logger.Debug("desktop notification failed", zap.Error(err))
	}
}
