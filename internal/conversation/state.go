package conversation

// State is the durable flag on a patient record naming the flow step that
// is pending. It is the only memory carried between turns.
type State string

const (
	// StateNone means no flow is in progress; intent classification decides
	// the turn.
	StateNone State = "none"
	// StateAwaitingName is entered for new leads who asked to schedule
	// before telling us who they are.
	StateAwaitingName State = "awaiting_name"
	// StateAwaitingDate means the next message is read as a desired day.
	StateAwaitingDate State = "awaiting_date"
	// StateAwaitingSlot means a day was chosen and the next message is read
	// as a time of day.
	StateAwaitingSlot State = "awaiting_slot_choice"
)

// ParseState maps the persisted column value back to a State. Unknown or
// empty values degrade to StateNone so a bad row can't wedge a sender.
func ParseState(s string) State {
	switch State(s) {
	case StateAwaitingName, StateAwaitingDate, StateAwaitingSlot:
		return State(s)
	default:
		return StateNone
	}
}

// InFlow reports whether a multi-turn flow is in progress. While a flow is
// in progress the state handler owns the turn unconditionally; intent
// classification only runs from StateNone.
func (s State) InFlow() bool {
	return s != StateNone
}
