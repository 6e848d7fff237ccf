package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sorrisolabs/clinic-assistant/internal/appointment"
	"github.com/sorrisolabs/clinic-assistant/internal/calendar"
	"github.com/sorrisolabs/clinic-assistant/internal/conversation"
	"github.com/sorrisolabs/clinic-assistant/internal/patient"
)

// TriageEngine is what the handlers need from the conversation engine.
type TriageEngine interface {
	HandleMessage(ctx context.Context, msg conversation.InboundMessage) (*conversation.Result, error)
}

func triageHandler(engine TriageEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TriageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.SenderID == "" {
			writeError(w, http.StatusBadRequest, "missing_sender_id", "senderId is required")
			return
		}

		result, err := engine.HandleMessage(r.Context(), conversation.InboundMessage{
			SenderID:   req.SenderID,
			SenderName: req.SenderName,
			Text:       req.MessageText,
			Timestamp:  req.Timestamp,
		})
		if err != nil {
			handleTriageError(w, result, err)
			return
		}

		writeJSON(w, http.StatusOK, TriageResponse{
			UserStatus:   result.UserStatus,
			Analysis:     result.Analysis,
			NextAction:   result.NextAction,
			ResponseText: result.ResponseText,
		})
	}
}

// handleTriageError maps engine failures to operator-facing error codes.
// The user-safe apology travels alongside so the channel integration can
// still reply to the sender; internal detail never reaches responseText.
func handleTriageError(w http.ResponseWriter, result *conversation.Result, err error) {
	resp := ErrorResponse{Details: err.Error()}
	if result != nil {
		resp.ResponseText = result.ResponseText
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, conversation.ErrCompensationFailed):
		// Lingering inconsistency between calendar and database; louder
		// than an ordinary failure so operators investigate.
		resp.Error = "compensation_failed"
	case errors.Is(err, calendar.ErrAuth):
		resp.Error = "calendar_auth_failed"
		status = http.StatusBadGateway
	case errors.Is(err, calendar.ErrCalendar):
		resp.Error = "calendar_unavailable"
		status = http.StatusBadGateway
	case errors.Is(err, patient.ErrSenderConflict):
		resp.Error = "sender_conflict"
		status = http.StatusConflict
	default:
		resp.Error = "internal_error"
	}

	writeJSON(w, status, resp)
}

func listPatientAppointmentsHandler(appts appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		limit := queryInt(r, "limit", 20)
		if limit > 100 {
			limit = 100
		}
		offset := queryInt(r, "offset", 0)

		list, err := appts.ListByPatient(r.Context(), id, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, AppointmentResponse{
				ID:              a.ID,
				PatientID:       a.PatientID,
				StartAt:         a.StartAt,
				EndAt:           a.EndAt,
				Status:          string(a.Status),
				ExternalEventID: a.ExternalEventID,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
