package models

import "time"

type EventType string

const (
	EventLineWon          EventType = "LineWon"
	EventLineLostToRival  EventType = "LineLostToRival"
	EventRequestAwarded   EventType = "RequestAwarded"
	EventRequestCancelled EventType = "RequestCancelled"
)

// Event is emitted by the award engine after its transaction commits, so
// observers never see state that later rolled back.
type Event struct {
	Id        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestId string    `json:"requestId,omitempty"`
	LineId    string    `json:"lineId,omitempty"`
	ProductId string    `json:"productId,omitempty"`
	OrderId   string    `json:"orderId,omitempty"`
	At        time.Time `json:"at"`
}
