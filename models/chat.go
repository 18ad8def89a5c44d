package models

import "time"

type Chat struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a durable chat message row. SenderFirstName/SenderLastName are
// filled by the enrichment lookup before the row is broadcast to the chat room.
type Message struct {
	ID              string    `json:"id"`
	ChatID          string    `json:"chat_id"`
	SenderID        string    `json:"sender_id"`
	Content         string    `json:"content"`
	Attachments     []string  `json:"attachments,omitempty"`
	MessageType     string    `json:"message_type"`
	ReadFlag        bool      `json:"read_flag"`
	CreatedAt       time.Time `json:"created_at"`
	SenderFirstName string    `json:"sender_first_name,omitempty"`
	SenderLastName  string    `json:"sender_last_name,omitempty"`
}
