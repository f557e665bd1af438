package alexa

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/sevenboom/internal/game"
)

func decode(t *testing.T, body string) *RequestEnvelope {
	t.Helper()
	env, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	return env
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{not json`))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"version":"1.0","request":{}}`))
	assert.Error(t, err)
}

func TestEvent(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Event
	}{
		{"launch", `{"request":{"type":"LaunchRequest"}}`, Event{Kind: EventGameStart}},
		{"new game", `{"request":{"type":"IntentRequest","intent":{"name":"NewGame"}}}`,
			Event{Kind: EventGameStart, Intent: "NewGame"}},
		{"number", `{"request":{"type":"IntentRequest","intent":{"name":"Number","slots":{"myNumber":{"name":"myNumber","value":"12"}}}}}`,
			Event{Kind: EventTurnAttempt, Utterance: "12", Intent: "Number"}},
		{"number without value", `{"request":{"type":"IntentRequest","intent":{"name":"Number","slots":{"myNumber":{"name":"myNumber"}}}}}`,
			Event{Kind: EventUnrecognized, Intent: "Number"}},
		{"boom", `{"request":{"type":"IntentRequest","intent":{"name":"Boom"}}}`,
			Event{Kind: EventTurnAttempt, Utterance: "boom", Intent: "Boom"}},
		{"help", `{"request":{"type":"IntentRequest","intent":{"name":"AMAZON.HelpIntent"}}}`,
			Event{Kind: EventHelp, Intent: "AMAZON.HelpIntent"}},
		{"cancel", `{"request":{"type":"IntentRequest","intent":{"name":"AMAZON.CancelIntent"}}}`,
			Event{Kind: EventStop, Intent: "AMAZON.CancelIntent"}},
		{"session ended", `{"request":{"type":"SessionEndedRequest","reason":"ERROR"}}`,
			Event{Kind: EventSessionEnd, Reason: "ERROR"}},
		{"unknown intent", `{"request":{"type":"IntentRequest","intent":{"name":"AMAZON.FallbackIntent"}}}`,
			Event{Kind: EventUnrecognized, Intent: "AMAZON.FallbackIntent"}},
		{"intent without body", `{"request":{"type":"IntentRequest"}}`, Event{Kind: EventUnrecognized}},
		{"unknown type", `{"request":{"type":"CanFulfillIntentRequest"}}`, Event{Kind: EventUnrecognized}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decode(t, tc.body).Event())
		})
	}
}

func TestState(t *testing.T) {
	env := decode(t, `{"session":{"attributes":{"expectedNumber":5,"retryCount":1}},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, game.GameState{ExpectedNumber: 5, RetryCount: 1}, env.State())

	env = decode(t, `{"session":{"attributes":{"expectedNumber":"8"}},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, game.GameState{ExpectedNumber: 8}, env.State())

	env = decode(t, `{"session":{"new":true},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, game.GameState{}, env.State())

	env = decode(t, `{"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, game.GameState{}, env.State())

	env = decode(t, `{"session":{"attributes":{"expectedNumber":-3,"retryCount":"x"}},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, game.GameState{}, env.State())
}

func TestApplicationID(t *testing.T) {
	env := decode(t, `{"session":{"application":{"applicationId":"amzn1.ask.skill.a"}},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, "amzn1.ask.skill.a", env.ApplicationID())

	env = decode(t, `{"context":{"System":{"application":{"applicationId":"amzn1.ask.skill.b"}}},"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, "amzn1.ask.skill.b", env.ApplicationID())
}

func TestNewResponse(t *testing.T) {
	res := NewResponse(game.Reply{State: game.GameState{ExpectedNumber: 4}, Speech: "3"})
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version":"1.0",
		"sessionAttributes":{"expectedNumber":4,"retryCount":0},
		"response":{"outputSpeech":{"type":"SSML","ssml":"<speak>3</speak>"},"shouldEndSession":false}
	}`, string(b))
}
