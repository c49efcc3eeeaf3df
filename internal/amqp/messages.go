package amqp

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"prodboard/internal/core"
)

// MessageVersion is bumped when the payload shape changes incompatibly.
const MessageVersion = 1

// ReportEventMessage is the envelope published for every generated report.
type ReportEventMessage struct {
	Version     int              `json:"version"`
	Event       core.ReportEvent `json:"event"`
	PublishedAt time.Time        `json:"published_at"`
}

// NewReportEventMessage wraps an event in the current envelope version.
func NewReportEventMessage(event core.ReportEvent) *ReportEventMessage {
	return &ReportEventMessage{
		Version:     MessageVersion,
		Event:       event,
		PublishedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportEventMessageFromJSON decodes and checks an envelope.
func ReportEventMessageFromJSON(data []byte) (*ReportEventMessage, error) {
	var msg ReportEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version != MessageVersion {
		return nil, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	if msg.Event.Kind == "" {
		return nil, errors.New("report event without kind")
	}
	return &msg, nil
}
