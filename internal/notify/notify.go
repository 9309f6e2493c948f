// Package notify publishes maintenance lifecycle events to an MQTT broker.
// Downstream push-notification delivery subscribes to these topics; the
// backend only fires events and never waits on delivery.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/parkrow/propertyops/internal/models"
	log "github.com/sirupsen/logrus"
)

// Event names published under propertyops/maintenance/{event}.
const (
	EventRequestCreated  = "request_created"
	EventRequestAssigned = "request_assigned"
	EventStatusChanged   = "status_changed"
)

// Publisher fans out maintenance events. Implementations must not block the
// mutation path.
type Publisher interface {
	PublishRequestEvent(event string, req *models.MaintenanceRequest)
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishRequestEvent(string, *models.MaintenanceRequest) {}

// MQTTPublisher publishes events over an MQTT connection.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker named by MQTT_BROKER. Returns a
// NopPublisher when the variable is unset so local runs need no broker.
func NewMQTTPublisher() (Publisher, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		log.Info("MQTT_BROKER not set, notifications disabled")
		return NopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("propertyops-server").
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return &MQTTPublisher{client: client}, nil
}

type requestEvent struct {
	Event      string               `json:"event"`
	RequestID  string               `json:"request_id"`
	PropertyID string               `json:"property_id"`
	Requester  string               `json:"requester_id"`
	Assignee   string               `json:"assignee_id,omitempty"`
	Status     models.RequestStatus `json:"status"`
	Priority   models.Priority      `json:"priority"`
	Title      string               `json:"title"`
	Timestamp  time.Time            `json:"timestamp"`
}

// PublishRequestEvent publishes fire-and-forget; failures are logged, never
// returned, so a broker outage cannot fail a mutation.
func (p *MQTTPublisher) PublishRequestEvent(event string, req *models.MaintenanceRequest) {
	e := requestEvent{
		Event:      event,
		RequestID:  req.ID.Hex(),
		PropertyID: req.PropertyID.Hex(),
		Requester:  req.RequesterID.Hex(),
		Status:     req.Status,
		Priority:   req.Priority,
		Title:      req.Title,
		Timestamp:  time.Now(),
	}
	if req.AssignedTo != nil {
		e.Assignee = req.AssignedTo.Hex()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		log.WithError(err).Error("failed to marshal notification event")
		return
	}
	topic := "propertyops/maintenance/" + event
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).
				Warn("failed to publish notification event")
		}
	}()
}
