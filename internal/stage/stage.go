// Package stage defines the visa application lifecycle as an explicit table:
// each stage knows which fields it requires and which stages may follow it.
// Services consult this table before persisting a change, keeping the rules
// independent of any transport or UI.
package stage

// Stage is a visa application lifecycle state.
type Stage string

const (
	Initial              Stage = "initial"
	DocumentCollected    Stage = "document_collected"
	PaymentRequested     Stage = "payment_requested"
	PaymentReceived      Stage = "payment_received"
	AppointmentSearching Stage = "appointment_searching"
	AppointmentScheduled Stage = "appointment_scheduled"
	AppointmentAttended  Stage = "appointment_attended"
	WaitingForDecision   Stage = "waiting_for_decision"
	DecisionReceived     Stage = "decision_received"
)

// Field names used in required-field reporting. They match the JSON field
// names of the application payloads.
const (
	FieldAppointmentDate     = "appointment_date"
	FieldAppointmentLocation = "appointment_location"
	FieldDecision            = "decision"
	FieldDecisionDate        = "decision_date"
)

type rule struct {
	next     []Stage
	required []string
}

// appointment_searching is optional: payment_received may go straight to
// appointment_scheduled.
var rules = map[Stage]rule{
	Initial:              {next: []Stage{DocumentCollected}},
	DocumentCollected:    {next: []Stage{PaymentRequested}},
	PaymentRequested:     {next: []Stage{PaymentReceived}},
	PaymentReceived:      {next: []Stage{AppointmentSearching, AppointmentScheduled}},
	AppointmentSearching: {next: []Stage{AppointmentScheduled}},
	AppointmentScheduled: {
		next:     []Stage{AppointmentAttended},
		required: []string{FieldAppointmentDate, FieldAppointmentLocation},
	},
	AppointmentAttended: {next: []Stage{WaitingForDecision}},
	WaitingForDecision:  {next: []Stage{DecisionReceived}},
	DecisionReceived: {
		required: []string{FieldDecision, FieldDecisionDate},
	},
}

// Valid reports whether s is a known stage.
func Valid(s Stage) bool {
	_, ok := rules[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func Terminal(s Stage) bool {
	r, ok := rules[s]
	return ok && len(r.next) == 0
}

// CanTransition reports whether moving from one stage to another is allowed.
// Staying on the current stage is always allowed (fields may still change).
func CanTransition(from, to Stage) bool {
	if !Valid(from) || !Valid(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, n := range rules[from].next {
		if n == to {
			return true
		}
	}
	return false
}

// RequiredFields lists the fields that must be present once an application
// is in the given stage.
func RequiredFields(s Stage) []string {
	return rules[s].required
}

// All returns the stages in lifecycle order.
func All() []Stage {
	return []Stage{
		Initial, DocumentCollected, PaymentRequested, PaymentReceived,
		AppointmentSearching, AppointmentScheduled, AppointmentAttended,
		WaitingForDecision, DecisionReceived,
	}
}
