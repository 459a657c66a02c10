package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// InvalidationMessage tells other replicas which cached views went stale.
type InvalidationMessage struct {
	Origin    string    `json:"origin"`
	Views     []string  `json:"views"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvalidationMessage(origin string, views []string) *InvalidationMessage {
	return &InvalidationMessage{
		Origin:    origin,
		Views:     append([]string(nil), views...),
		Timestamp: time.Now(),
	}
}

func (m *InvalidationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvalidationMessageFromJSON decodes a message and rejects ones without views.
func InvalidationMessageFromJSON(data []byte) (*InvalidationMessage, error) {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.Views) == 0 {
		return nil, errors.New("invalidation message without views")
	}
	return &msg, nil
}
