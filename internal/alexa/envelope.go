// internal/alexa/envelope.go
//
// Wire types for the Alexa Skills Kit custom-skill webhook.
// Responsibilities:
//   - Decode inbound request envelopes.
//   - Classify them into the events the game understands.
//   - Pull the prior GameState out of the echoed session attributes.
//   - Build response envelopes with SSML speech.

package alexa

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robalobadob/sevenboom/internal/game"
)

// Version is written into every response envelope.
const Version = "1.0"

// Request types.
const (
	TypeLaunch       = "LaunchRequest"
	TypeIntent       = "IntentRequest"
	TypeSessionEnded = "SessionEndedRequest"
)

// Intent and slot names defined by the interaction model.
const (
	IntentNumber  = "Number"
	IntentBoom    = "Boom"
	IntentNewGame = "NewGame"
	IntentHelp    = "AMAZON.HelpIntent"
	IntentStop    = "AMAZON.StopIntent"
	IntentCancel  = "AMAZON.CancelIntent"

	SlotNumber = "myNumber"
)

// Session attribute keys.
const (
	attrExpectedNumber = "expectedNumber"
	attrRetryCount     = "retryCount"
)

// RequestEnvelope is the body POSTed by the platform.
type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Context *Context `json:"context,omitempty"`
	Request Request  `json:"request"`
}

type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type Context struct {
	System struct {
		Application Application `json:"application"`
	} `json:"System"`
}

type Request struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId"`
	Timestamp string        `json:"timestamp"`
	Locale    string        `json:"locale,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Error     *RequestError `json:"error,omitempty"`
	Intent    *Intent       `json:"intent,omitempty"`
}

type RequestError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Decode reads a request envelope from r.
func Decode(r io.Reader) (*RequestEnvelope, error) {
	var env RequestEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode request envelope: %w", err)
	}
	if env.Request.Type == "" {
		return nil, fmt.Errorf("decode request envelope: missing request type")
	}
	return &env, nil
}

// ApplicationID returns the skill ID the request was addressed to.
func (e *RequestEnvelope) ApplicationID() string {
	if e.Session != nil && e.Session.Application.ApplicationID != "" {
		return e.Session.Application.ApplicationID
	}
	if e.Context != nil {
		return e.Context.System.Application.ApplicationID
	}
	return ""
}

// State returns the GameState echoed back in the session attributes,
// or the zero state when there is none.
func (e *RequestEnvelope) State() game.GameState {
	if e.Session == nil || e.Session.Attributes == nil {
		return game.GameState{}
	}
	st := game.GameState{
		ExpectedNumber: attrInt(e.Session.Attributes[attrExpectedNumber]),
		RetryCount:     attrInt(e.Session.Attributes[attrRetryCount]),
	}
	if st.ExpectedNumber < 0 {
		st.ExpectedNumber = 0
	}
	if st.RetryCount < 0 {
		st.RetryCount = 0
	}
	return st
}

// attrInt accepts JSON numbers and numeric strings; anything else is 0.
func attrInt(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
