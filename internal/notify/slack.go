package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"github.com/vitalwatch/vitalwatch/internal/database"
)

// SlackNotifier posts critical alerts to a Slack channel. Delivery failures
// are logged and absorbed; the ingestion path never sees them.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier posting to the given channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// NotifyAlert posts one alert to the configured channel.
func (n *SlackNotifier) NotifyAlert(patientID string, alert *database.Alert) {
	message := fmt.Sprintf(":rotating_light: *%s Alert*\n*Patient:* %s\n*Type:* %s\n%s",
		alert.Severity,
		patientID,
		alert.AlertType,
		alert.Message,
	)

	_, _, err := n.client.PostMessage(
		n.channel,
		slack.MsgOptionText(message, false),
	)
	if err != nil {
		log.Printf("Failed to post alert to Slack: %v", err)
	}
}
