package alexa

// EventKind is the decoded meaning of a request.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventGameStart
	EventTurnAttempt
	EventHelp
	EventStop
	EventSessionEnd
)

func (k EventKind) String() string {
	switch k {
	case EventGameStart:
		return "game_start"
	case EventTurnAttempt:
		return "turn_attempt"
	case EventHelp:
		return "help"
	case EventStop:
		return "stop"
	case EventSessionEnd:
		return "session_end"
	}
	return "unrecognized"
}

// Event is a classified request.
type Event struct {
	Kind      EventKind
	Utterance string // TurnAttempt only
	Reason    string // SessionEnd only
	Intent    string // for logging unrecognized intents
}

// Event classifies the envelope.
func (e *RequestEnvelope) Event() Event {
	req := e.Request
	switch req.Type {
	case TypeLaunch:
		return Event{Kind: EventGameStart}
	case TypeSessionEnded:
		return Event{Kind: EventSessionEnd, Reason: req.Reason}
	case TypeIntent:
	default:
		return Event{Kind: EventUnrecognized}
	}

	if req.Intent == nil {
		return Event{Kind: EventUnrecognized}
	}
	name := req.Intent.Name
	switch name {
	case IntentNewGame:
		return Event{Kind: EventGameStart, Intent: name}
	case IntentBoom:
		return Event{Kind: EventTurnAttempt, Utterance: "boom", Intent: name}
	case IntentNumber:
		if slot, ok := req.Intent.Slots[SlotNumber]; ok && slot.Value != "" {
			return Event{Kind: EventTurnAttempt, Utterance: slot.Value, Intent: name}
		}
	case IntentHelp:
		return Event{Kind: EventHelp, Intent: name}
	case IntentStop, IntentCancel:
		return Event{Kind: EventStop, Intent: name}
	}
	return Event{Kind: EventUnrecognized, Intent: name}
}
