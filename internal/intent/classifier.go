package intent

import "strings"

type Intent string

const (
	ScheduleAppointment Intent = "SCHEDULE_APPOINTMENT"
	RequestPrice        Intent = "REQUEST_PRICE"
	Greeting            Intent = "GREETING"
	Unknown             Intent = "UNKNOWN"
)

type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Keyword sets are checked in this order; the first category with any hit
// wins, there is no scoring across categories.
var (
	scheduleKeywords = []string{"marcar", "agendar", "agendamento", "consulta", "horário", "horario"}
	priceKeywords    = []string{"preço", "preco", "valor", "quanto", "custa", "custo"}
	greetingKeywords = []string{"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "e aí", "tudo bem"}
)

const matchConfidence = 0.9

// Classify maps free text to a coarse intent. It is total: every input,
// including the empty string, yields a classification.
func Classify(text string) Classification {
	if text == "" {
		return Classification{Intent: Unknown, Confidence: 0.0}
	}

	text = strings.ToLower(text)

	switch {
	case containsAny(text, scheduleKeywords):
		return Classification{Intent: ScheduleAppointment, Confidence: matchConfidence}
	case containsAny(text, priceKeywords):
		return Classification{Intent: RequestPrice, Confidence: matchConfidence}
	case containsAny(text, greetingKeywords):
		return Classification{Intent: Greeting, Confidence: matchConfidence}
	}

	return Classification{Intent: Unknown, Confidence: 0.3}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
