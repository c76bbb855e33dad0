package notifications

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/config"
	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service sends alert notifications via webhook and email. Channels
// are independent; each is skipped when unconfigured, and a failure on
// one does not stop the other.
type Service struct {
	config *config.Config
	client *resty.Client
}

var _ AlertNotifier = (*Service)(nil)

// WebhookMessage is the MessageCard payload posted to the alert webhook.
type WebhookMessage struct {
	Type       string           `json:"@type"`
	Context    string           `json:"@context"`
	ThemeColor string           `json:"themeColor,omitempty"`
	Title      string           `json:"title"`
	Text       string           `json:"text"`
	Sections   []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	ActivityTitle string        `json:"activityTitle,omitempty"`
	Facts         []WebhookFact `json:"facts,omitempty"`
	Markdown      bool          `json:"markdown,omitempty"`
}

type WebhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a notification service from channel configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendAlert delivers the alert to every configured channel and returns
// a combined error if any channel failed.
func (s *Service) SendAlert(alert *models.Alert) error {
	var errs []string

	if s.config.AlertWebhookURL != "" {
		if err := s.sendToWebhook(alert); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Debugf("Sent %s alert %s to webhook", alert.AlertType, alert.ID)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(alert); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Debugf("Sent %s alert %s via email", alert.AlertType, alert.ID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Service) sendToWebhook(alert *models.Alert) error {
	message := s.buildWebhookMessage(alert)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.AlertWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func (s *Service) buildWebhookMessage(alert *models.Alert) *WebhookMessage {
	facts := []WebhookFact{
		{Name: "Brand", Value: alert.BrandID},
		{Name: "Type", Value: string(alert.AlertType)},
		{Name: "Severity", Value: string(alert.Severity)},
		{Name: "Raised", Value: alert.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
	}

	// Diagnostic payload entries, sorted for stable output.
	keys := make([]string, 0, len(alert.Data))
	for k := range alert.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		facts = append(facts, WebhookFact{Name: k, Value: fmt.Sprintf("%v", alert.Data[k])})
	}

	return &WebhookMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: severityColor(alert.Severity),
		Title:      alert.Title,
		Text:       alert.Description,
		Sections: []WebhookSection{
			{ActivityTitle: "Details", Facts: facts, Markdown: true},
		},
	}
}

func severityColor(severity models.AlertSeverity) string {
	switch severity {
	case models.SeverityCritical:
		return "8B0000"
	case models.SeverityHigh:
		return "D13438"
	case models.SeverityMedium:
		return "FFB900"
	default:
		return "605E5C"
	}
}

func (s *Service) sendEmail(alert *models.Alert) error {
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(string(alert.Severity)), alert.Title)

	var body strings.Builder
	fmt.Fprintf(&body, "%s\n\n", alert.Description)
	fmt.Fprintf(&body, "Brand:    %s\n", alert.BrandID)
	fmt.Fprintf(&body, "Type:     %s\n", alert.AlertType)
	fmt.Fprintf(&body, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&body, "Raised:   %s\n", alert.CreatedAt.Format(time.RFC1123))
	for k, v := range alert.Data {
		fmt.Fprintf(&body, "%s: %v\n", k, v)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
