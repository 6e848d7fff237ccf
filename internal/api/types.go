package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/sorrisolabs/clinic-assistant/internal/intent"
)

type TriageRequest struct {
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName,omitempty"`
	MessageText string `json:"messageText"`
	Timestamp   string `json:"timestamp"`
}

type TriageResponse struct {
	UserStatus   string                 `json:"userStatus"`
	Analysis     *intent.Classification `json:"analysis,omitempty"`
	NextAction   string                 `json:"nextAction"`
	ResponseText string                 `json:"responseText"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	Status          string    `json:"status"`
	ExternalEventID string    `json:"external_event_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// ResponseText carries the user-safe reply so the channel integration
	// can still answer the sender when a turn fails.
	ResponseText string `json:"responseText,omitempty"`
}
