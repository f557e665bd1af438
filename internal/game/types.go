// internal/game/types.go
//
// Core type definitions for the Seven Boom game engine.
// Defines:
//   - GameState: the state blob round-tripped through the platform's session attributes.
//   - TurnOutcome: the result of resolving a single turn.
//   - Utterance: what the caller said, decided once at the boundary.
//   - Starter: which party speaks "1".
//   - Reply: state + speech handed back to the webhook.

package game

// GameState is the only persisted entity. The platform echoes it back on every request.
// ExpectedNumber == 0 means no game is in progress.
type GameState struct {
	ExpectedNumber int `json:"expectedNumber"` // number (or boom slot) the caller must say next
	RetryCount     int `json:"retryCount"`     // 0, or 1 after a single failed attempt
}

// InProgress reports whether a game has been started.
func (s GameState) InProgress() bool { return s.ExpectedNumber > 0 }

// Starter identifies which party begins a game by saying "1".
type Starter int

const (
	StarterCaller Starter = 0
	StarterEngine Starter = 1
)

func (s Starter) String() string {
	if s == StarterEngine {
		return "engine"
	}
	return "caller"
}

// TurnOutcome is transient; the webhook converts it into a GameState via State().
type TurnOutcome struct {
	NextExpectedNumber int    // last number accounted for (spoken by the engine, or rewound to)
	IsBoom             bool   // NextExpectedNumber is a boom number (success only)
	ErrorMessage       string // set only on a failed attempt
	RetryCount         int    // carried into the next GameState
	Restarted          bool   // a second consecutive failure re-rolled the starter
	Starter            Starter
}

// Success reports whether the turn matched the expected number.
func (o TurnOutcome) Success() bool { return o.ErrorMessage == "" }

// State returns the GameState to persist: the caller's next number follows NextExpectedNumber.
func (o TurnOutcome) State() GameState {
	return GameState{ExpectedNumber: o.NextExpectedNumber + 1, RetryCount: o.RetryCount}
}

// UtteranceKind tags the Utterance variant.
type UtteranceKind int

const (
	UtteranceInvalid UtteranceKind = iota
	UtteranceNumber
	UtteranceBoom
)

// Utterance is Number(n) | Boom | Invalid(raw).
type Utterance struct {
	Kind   UtteranceKind
	Number int    // valid when Kind == UtteranceNumber
	Raw    string // the text as received
}

// Reply is what the webhook serializes into the platform's response envelope.
type Reply struct {
	State      GameState
	Speech     string // SSML fragment, without the <speak> wrapper
	EndSession bool
}
