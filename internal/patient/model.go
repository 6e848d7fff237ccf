package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID                uuid.UUID
	SenderKey         string
	DisplayName       *string
	ConversationState string
	// PendingDate is the day chosen mid-flow, kept until the booking
	// completes or the flow aborts.
	PendingDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name returns the display name or a generic fallback for reply text.
func (p *Patient) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return "cliente"
}

// NormalizeSenderKey strips channel routing suffixes from a raw sender id.
// WhatsApp ids arrive as "5511999999999@c.us"; the part before the first
// "@" identifies the sender across channels.
func NormalizeSenderKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
