package notifications

import "github.com/brandpulse/reputation-monitor/internal/models"

// AlertNotifier fans a raised alert out to the configured channels.
// Delivery is best-effort: the engine logs failures and moves on.
type AlertNotifier interface {
	SendAlert(alert *models.Alert) error
}
