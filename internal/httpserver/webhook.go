// internal/httpserver/webhook.go
//
// POST /alexa/game: decode the platform envelope, dispatch on the event,
// and forward the engine's reply verbatim.
//
//   - GameStart     → engine.StartGame
//   - TurnAttempt   → engine.Play with the state echoed in session attributes
//   - Help / Stop   → rules / goodbye
//   - SessionEnd    → 200 with no body (the platform forbids a response)
//   - Unrecognized  → 501, engine not called

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/sevenboom/internal/alexa"
	"github.com/robalobadob/sevenboom/internal/game"
)

func (s *Server) handleAlexa(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	env, err := alexa.Decode(r.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("bad alexa request")
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if s.skillID != "" && env.ApplicationID() != s.skillID {
		logger.Warn().Str("applicationId", env.ApplicationID()).Msg("request for another skill")
		http.Error(w, `{"error":"wrong_application"}`, http.StatusForbidden)
		return
	}

	ev := env.Event()
	s.metrics.observeEvent(ev.Kind)
	logger.Info().Str("event", ev.Kind.String()).Str("requestType", env.Request.Type).Msg("alexa request")

	var reply game.Reply
	switch ev.Kind {
	case alexa.EventGameStart:
		res := s.engine.StartGame()
		s.metrics.observeResult(res)
		reply = res.Reply

	case alexa.EventTurnAttempt:
		prior := env.State()
		res := s.engine.Play(ev.Utterance, prior)
		s.metrics.observeResult(res)
		logTurn(r, ev.Utterance, prior, res)
		reply = res.Reply

	case alexa.EventHelp:
		reply = s.engine.Help(env.State())

	case alexa.EventStop:
		reply = s.engine.Stop()

	case alexa.EventSessionEnd:
		if ev.Reason == "ERROR" {
			evt := logger.Error().Str("reason", ev.Reason)
			if e := env.Request.Error; e != nil {
				evt = evt.Str("errorType", e.Type).Str("errorMessage", e.Message)
			}
			evt.Msg("platform ended the session due to an error")
		}
		w.WriteHeader(http.StatusOK)
		return

	default:
		logger.Error().Str("intent", ev.Intent).Str("requestType", env.Request.Type).Msg("intent not implemented")
		http.Error(w, `{"error":"Intent Not Implemented"}`, http.StatusNotImplemented)
		return
	}

	_ = json.NewEncoder(w).Encode(alexa.NewResponse(reply))
}

func logTurn(r *http.Request, utterance string, prior game.GameState, res game.Result) {
	evt := hlog.FromRequest(r).Debug().
		Str("utterance", utterance).
		Int("expectedNumber", prior.ExpectedNumber).
		Int("retryCount", prior.RetryCount)
	if o := res.Outcome; o != nil {
		evt = evt.Int("nextNumber", o.NextExpectedNumber).
			Bool("isBoom", o.IsBoom).
			Bool("success", o.Success()).
			Bool("restarted", o.Restarted)
	} else {
		evt = evt.Bool("newGame", true)
	}
	evt.Msg("turn")
}
