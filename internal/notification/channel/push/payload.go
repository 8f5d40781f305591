package push

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// DefaultTitle is shown when a payload carries no usable title.
	DefaultTitle = "PeerHelp"
	// RootURL is where a notification without a target opens.
	RootURL = "/"
)

// Payload is the structured push message the service worker renders.
type Payload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Payload) Encode() ([]byte, error) {
	if p.URL == "" {
		p.URL = RootURL
	}
	return json.Marshal(p)
}

// DecodePayload is the receiving side's contract. Data that is not a JSON
// object with a body is shown as plain text under DefaultTitle, opening RootURL.
func DecodePayload(data []byte) Payload {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil || strings.TrimSpace(p.Body) == "" {
		return Payload{Title: DefaultTitle, Body: strings.TrimSpace(string(data)), URL: RootURL}
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	if p.URL == "" {
		p.URL = RootURL
	}
	return p
}
