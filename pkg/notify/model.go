package notify

import (
	"encoding/json"
	"time"
)

type Notification struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"-"`
	Kind      string          `json:"kind"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
	ReadAt    *time.Time      `json:"read_at"`
	CreatedAt time.Time       `json:"created"`
}

// Event is what a live connection receives.
type Event struct {
	EventType    string       `json:"event_type"`
	Notification Notification `json:"notification"`
}

// ReadReceipt is sent by a client to mark notifications read.
type ReadReceipt struct {
	EventType       string  `json:"event_type"`
	NotificationIDs []int64 `json:"notification_ids"`
}

type ErrorEvent struct {
	EventType string `json:"event_type"`
	Error     string `json:"error"`
}

type Page struct {
	Results []Notification `json:"results"`
	Count   int64          `json:"count"`
	Unread  int64          `json:"unread"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type Status struct {
	Online bool  `json:"online"`
	Unread int64 `json:"unread"`
}

const (
	EventNotification = "notification"
	EventRead         = "notification_read"
	EventError        = "error"
)
