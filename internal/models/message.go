package models

import "time"

// TargetAudience selects message recipients.
type TargetAudience struct {
	Type     string                 `json:"type"`
	Criteria map[string]interface{} `json:"criteria,omitempty"`
}

// DeliveryStats are filled by the backend after sending.
type DeliveryStats struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Opened    int `json:"opened,omitempty"`
}

// Message is an email, sms, notification or announcement.
type Message struct {
	ID             string         `json:"_id"`
	Subject        string         `json:"subject"`
	Content        string         `json:"content"`
	Type           MessageType    `json:"type"`
	TargetAudience TargetAudience `json:"targetAudience"`
	Status         MessageStatus  `json:"status"`
	ScheduledAt    *time.Time     `json:"scheduledAt,omitempty"`
	DeliveryStats  *DeliveryStats `json:"deliveryStats,omitempty"`
	Institution    Ref            `json:"institution"`
	CreatedAt      *time.Time     `json:"createdAt,omitempty"`
}

// Editable reports whether the message may still be changed.
func (m Message) Editable() bool {
	return m.Status == MessageDraft
}

// MessageTemplate is a reusable message body.
type MessageTemplate struct {
	ID      string      `json:"_id"`
	Name    string      `json:"name"`
	Subject string      `json:"subject"`
	Content string      `json:"content"`
	Type    MessageType `json:"type"`
}
