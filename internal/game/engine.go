// internal/game/engine.go
//
// Turn-resolution state machine for Seven Boom.
// Responsibilities:
//   - Start games with a coin-flip starter (engine says "1", or the caller is asked to).
//   - Resolve a caller's utterance against the expected number.
//   - Forgive one mistake (rewind by one), restart on the second.
//
// Notes:
//   - The engine holds no session state; every call takes and returns a GameState snapshot.
//   - Randomness is injected through RandomSource so tests can fix the starter.
package game

import (
	"math/rand/v2"
)

// RandomSource is a uniform integer source. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// globalSource uses the goroutine-safe top-level math/rand/v2 generator.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Engine resolves turns. It is immutable and safe for concurrent use as long
// as its RandomSource is.
type Engine struct {
	rng RandomSource
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource replaces the starter coin.
func WithRandomSource(r RandomSource) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{rng: globalSource{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes how a request was resolved, for the webhook's logs and metrics.
type Result struct {
	Reply   Reply
	Outcome *TurnOutcome // nil when a fresh game was started
	Starter Starter      // set when a game started or restarted
	NewGame bool
}

// StartGame flips the starter coin and returns a fresh game.
// Engine starts → expects 2 after saying "1"; caller starts → expects 1.
func (e *Engine) StartGame() Result {
	s := e.pickStarter()
	return Result{
		Reply: Reply{
			State:  GameState{ExpectedNumber: int(s) + 1},
			Speech: startSpeech(s),
		},
		Starter: s,
		NewGame: true,
	}
}

// TakeTurn resolves u against expected. expected must be >= 1.
//
// Success: the engine answers with expected+1 (or BOOM) and retry debt clears.
// First failure: state rewinds by one so the caller retries the same number.
// Second failure: a new starter is drawn and the game starts over.
func (e *Engine) TakeTurn(u Utterance, expected, retryCount int) TurnOutcome {
	if u.Matches(expected) {
		next := expected + 1
		return TurnOutcome{
			NextExpectedNumber: next,
			IsBoom:             IsBoomNumber(next),
		}
	}

	if retryCount <= 0 {
		return TurnOutcome{
			NextExpectedNumber: expected - 1,
			ErrorMessage:       retryMessage(u),
			RetryCount:         1,
		}
	}

	s := e.pickStarter()
	return TurnOutcome{
		NextExpectedNumber: int(s),
		ErrorMessage:       restartMessage(expected, u, s),
		Restarted:          true,
		Starter:            s,
	}
}

// Play is the turn entry point. With no game in progress the utterance is
// discarded and a new game starts.
func (e *Engine) Play(raw string, prior GameState) Result {
	if !prior.InProgress() {
		return e.StartGame()
	}
	out := e.TakeTurn(ParseUtterance(raw), prior.ExpectedNumber, prior.RetryCount)
	return Result{
		Reply:   Reply{State: out.State(), Speech: out.Speech()},
		Outcome: &out,
		Starter: out.Starter,
	}
}

// Help reads the rules back without touching the game.
func (e *Engine) Help(prior GameState) Reply {
	return Reply{State: prior, Speech: HelpSpeech}
}

// Stop ends the session.
func (e *Engine) Stop() Reply {
	return Reply{Speech: GoodbyeSpeech, EndSession: true}
}

// Speech is the text to say for this outcome.
func (o TurnOutcome) Speech() string {
	if o.ErrorMessage != "" {
		return o.ErrorMessage
	}
	return renderNumber(o.NextExpectedNumber)
}

func (e *Engine) pickStarter() Starter {
	if e.rng.IntN(2) == 1 {
		return StarterEngine
	}
	return StarterCaller
}
