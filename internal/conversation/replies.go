package conversation

import (
	"fmt"
	"strings"
	"time"
)

// next_action tags returned to the channel integration.
const (
	ActionScheduleAppointment = "schedule_appointment"
	ActionPivotToSchedule     = "pivot_to_schedule"
	ActionAskHowCanHelp       = "ask_how_can_help"
	ActionClarifyIntent       = "clarify_intent"
	ActionCollectContactInfo  = "collect_contact_info"
	ActionCollectDate         = "collect_date"
	ActionChooseSlot          = "choose_slot"
	ActionBookingConfirmed    = "booking_confirmed"
	ActionRetry               = "retry"
)

const (
	replyWelcomePrefix  = "Olá! Bem-vindo à nossa clínica. "
	replyGreetingPrefix = "Olá %s! "

	replyAskName = "Antes de agendarmos, preciso de algumas informações. Qual seu nome completo?"
	replyAskDate = "Vou te ajudar com o agendamento. Qual o melhor dia e horário para você?"
	replyPivotPrice = "Entendo seu interesse nos valores. Para te passar um orçamento preciso e justo, " +
		"eu preciso primeiro fazer uma avaliação clínica. Vamos marcar uma consulta sem compromisso para eu entender seu caso?"
	replyHowCanHelp   = "Em que posso ajudar você hoje?"
	replyClarify      = "Não entendi muito bem. Você gostaria de marcar uma consulta ou saber mais sobre nossos serviços?"
	replyThanksName   = "Obrigado, %s! Qual o melhor dia para a sua consulta?"
	replyRephraseDate = "Desculpe, não consegui entender a data. Pode me dizer o dia de outra forma? Por exemplo: \"amanhã\" ou \"25/12\"."
	replyNoSlots      = "Infelizmente não temos horários livres nesse dia. Pode me sugerir outra data?"
	replySlots        = "Para o dia %s temos estes horários livres: %s. Qual prefere?"
	replyRephraseTime = "Não consegui identificar o horário. Pode me dizer a hora desejada? Por exemplo: \"14h\"."
	replySlotOutside  = "Atendemos das 09:00 às 18:00. Pode escolher um horário dentro desse período?"
	replyConfirmed    = "Perfeito, %s! Sua consulta está confirmada para %s às %s."
	replyConfirmLink  = " Detalhes: %s"
	replyBookingFail  = "Desculpe, não consegui concluir o agendamento agora. Pode tentar novamente em instantes?"
	replyBusy         = "Um momento, ainda estou processando sua mensagem anterior."
	replyApology      = "Desculpe, tivemos um problema ao processar sua mensagem. Pode tentar novamente?"
)

func formatSlotList(slots []time.Time) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.Format("15:04")
	}
	return strings.Join(parts, ", ")
}

func formatDay(d time.Time) string {
	return d.Format("02/01/2006")
}

func greeting(name string) string {
	return fmt.Sprintf(replyGreetingPrefix, name)
}
