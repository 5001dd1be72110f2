package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/vitalwatch/vitalwatch/internal/config"
	"github.com/vitalwatch/vitalwatch/internal/database"
	"github.com/vitalwatch/vitalwatch/internal/models"
	"github.com/vitalwatch/vitalwatch/internal/services"
)

// Bridge subscribes to a telemetry topic and feeds each message through the
// same ingestion pipeline as the HTTP endpoint. Malformed messages are
// logged and dropped; persistence faults are logged (MQTT has no caller to
// report them to).
type Bridge struct {
	client paho.Client
	ingest *services.IngestService
	topic  string
}

// NewBridge connects to the broker and subscribes to the telemetry topic.
func NewBridge(cfg *config.Config, ingest *services.IngestService) (*Bridge, error) {
	b := &Bridge{
		ingest: ingest,
		topic:  cfg.MQTTTopic,
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second)

	opts.OnConnect = func(client paho.Client) {
		log.Println("Connected to MQTT broker")
		if token := client.Subscribe(b.topic, 1, b.handleMessage); token.Wait() && token.Error() != nil {
			log.Printf("Failed to subscribe to topic %s: %v", b.topic, token.Error())
			return
		}
		log.Printf("Subscribed to MQTT topic: %s", b.topic)
	}
	opts.OnConnectionLost = func(client paho.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	b.client = paho.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return b, nil
}

// handleMessage ingests one telemetry message from the broker.
func (b *Bridge) handleMessage(client paho.Client, msg paho.Message) {
	var raw database.JSONB
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("Dropping malformed MQTT message on %s: %v", msg.Topic(), err)
		return
	}

	payload, err := models.PayloadFromDocument(raw)
	if err != nil {
		log.Printf("Dropping malformed MQTT telemetry on %s: %v", msg.Topic(), err)
		return
	}

	if _, err := b.ingest.Ingest(payload, raw); err != nil {
		log.Printf("Failed to ingest MQTT telemetry for %s: %v", payload.PatientID, err)
	}
}

// Disconnect closes the broker connection, waiting up to the given number
// of milliseconds for in-flight work.
func (b *Bridge) Disconnect(quiesceMs uint) {
	b.client.Disconnect(quiesceMs)
}
