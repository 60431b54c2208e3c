package notifications

import (
	"encoding/json"
	"time"
)

// Event types pushed to websocket clients.
const (
	EventNewFollower = "new_follower"
	EventNewComment  = "new_comment"
	EventPostLiked   = "post_liked"
	EventDropped     = "messages_dropped"
)

// Event is the JSON envelope written to a websocket.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Encode marshals the event for publishing.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// eventType extracts the "type" field of an encoded event, or "unknown".
func eventType(payload string) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &probe); err != nil || probe.Type == "" {
		return "unknown"
	}
	return probe.Type
}
