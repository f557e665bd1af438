package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/sevenboom/internal/alexa"
	"github.com/robalobadob/sevenboom/internal/config"
	"github.com/robalobadob/sevenboom/internal/game"
	"github.com/robalobadob/sevenboom/internal/opsauth"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AlexaVerify = false
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config, starter int) *Server {
	t.Helper()
	return New(cfg,
		WithLogger(zerolog.Nop()),
		WithEngine(game.New(game.WithRandomSource(fixedSource(starter)))),
	)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) alexa.ResponseEnvelope {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res alexa.ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func intentBody(intent, slotValue string, attrs string) string {
	slots := ""
	if slotValue != "" {
		slots = `,"slots":{"myNumber":{"name":"myNumber","value":"` + slotValue + `"}}`
	}
	session := `"session":{"new":false,"sessionId":"s1","application":{"applicationId":"amzn1.ask.skill.test"}`
	if attrs != "" {
		session += `,"attributes":` + attrs
	}
	session += `}`
	return `{"version":"1.0",` + session + `,"request":{"type":"IntentRequest","requestId":"r1","timestamp":"` +
		time.Now().UTC().Format(time.RFC3339) + `","intent":{"name":"` + intent + `"` + slots + `}}}`
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seven Boom is up and running.")
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"/nope"`)
}

func TestAlexa_Launch(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)
	rec := do(t, s, http.MethodPost, "/alexa/game", `{"version":"1.0","request":{"type":"LaunchRequest"}}`)
	res := decodeResponse(t, rec)
	assert.Equal(t, "1.0", res.Version)
	assert.Equal(t, game.GameState{ExpectedNumber: 2}, res.SessionAttributes)
	assert.Equal(t, "SSML", res.Response.OutputSpeech.Type)
	assert.Equal(t, "<speak>1</speak>", res.Response.OutputSpeech.SSML)
	assert.False(t, res.Response.ShouldEndSession)

	s = newTestServer(t, testConfig(), 0)
	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game", intentBody("NewGame", "", "")))
	assert.Equal(t, game.GameState{ExpectedNumber: 1}, res.SessionAttributes)
	assert.Equal(t, "<speak>please start, say 1</speak>", res.Response.OutputSpeech.SSML)
}

func TestAlexa_Turns(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)

	res := decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("Number", "2", `{"expectedNumber":2,"retryCount":0}`)))
	assert.Equal(t, game.GameState{ExpectedNumber: 4}, res.SessionAttributes)
	assert.Equal(t, "<speak>3</speak>", res.Response.OutputSpeech.SSML)

	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("Boom", "", `{"expectedNumber":7,"retryCount":0}`)))
	assert.Equal(t, game.GameState{ExpectedNumber: 9}, res.SessionAttributes)
	assert.Equal(t, "<speak>8</speak>", res.Response.OutputSpeech.SSML)

	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("Number", "7", `{"expectedNumber":7,"retryCount":0}`)))
	assert.Equal(t, game.GameState{ExpectedNumber: 7, RetryCount: 1}, res.SessionAttributes)
	assert.Contains(t, res.Response.OutputSpeech.SSML, "I heard 7")

	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("Number", "7", `{"expectedNumber":7,"retryCount":1}`)))
	assert.Equal(t, game.GameState{ExpectedNumber: 2}, res.SessionAttributes)
	assert.Contains(t, res.Response.OutputSpeech.SSML, "it should be BOOM and not 7")

	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("Number", "6", `{"expectedNumber":6,"retryCount":0}`)))
	assert.Equal(t, `<speak><emphasis level="moderate">BOOM</emphasis></speak>`, res.Response.OutputSpeech.SSML)
}

func TestAlexa_TurnWithoutGameStartsOne(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)
	res := decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game", intentBody("Number", "5", "")))
	assert.Equal(t, game.GameState{ExpectedNumber: 2}, res.SessionAttributes)
	assert.Equal(t, "<speak>1</speak>", res.Response.OutputSpeech.SSML)
}

func TestAlexa_HelpAndStop(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)

	res := decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game",
		intentBody("AMAZON.HelpIntent", "", `{"expectedNumber":5,"retryCount":1}`)))
	assert.Equal(t, game.GameState{ExpectedNumber: 5, RetryCount: 1}, res.SessionAttributes)
	assert.False(t, res.Response.ShouldEndSession)

	res = decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game", intentBody("AMAZON.StopIntent", "", "")))
	assert.True(t, res.Response.ShouldEndSession)
}

func TestAlexa_SessionEndedHasNoBody(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)
	rec := do(t, s, http.MethodPost, "/alexa/game",
		`{"request":{"type":"SessionEndedRequest","reason":"ERROR","error":{"type":"INVALID_RESPONSE","message":"x"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAlexa_Errors(t *testing.T) {
	s := newTestServer(t, testConfig(), 1)

	rec := do(t, s, http.MethodPost, "/alexa/game", intentBody("AMAZON.FallbackIntent", "", ""))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intent Not Implemented")

	rec = do(t, s, http.MethodPost, "/alexa/game", intentBody("Number", "", ""))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = do(t, s, http.MethodPost, "/alexa/game", `{"request":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlexa_SkillID(t *testing.T) {
	cfg := testConfig()
	cfg.AlexaSkillID = "amzn1.ask.skill.other"
	s := newTestServer(t, cfg, 1)
	rec := do(t, s, http.MethodPost, "/alexa/game", intentBody("NewGame", "", ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	cfg.AlexaSkillID = "amzn1.ask.skill.test"
	s = newTestServer(t, cfg, 1)
	decodeResponse(t, do(t, s, http.MethodPost, "/alexa/game", intentBody("NewGame", "", "")))
}

func TestAlexa_VerificationRejectsUnsigned(t *testing.T) {
	cfg := config.Default()
	s := newTestServer(t, cfg, 1)
	rec := do(t, s, http.MethodPost, "/alexa/game", `{"request":{"type":"LaunchRequest"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_signature")

	rec = do(t, s, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), "sevenboom_verification_failures_total 1")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, testConfig(), 0)
	do(t, s, http.MethodPost, "/alexa/game", `{"request":{"type":"LaunchRequest"}}`)
	do(t, s, http.MethodPost, "/alexa/game", intentBody("Number", "1", `{"expectedNumber":1}`))
	do(t, s, http.MethodPost, "/alexa/game", intentBody("Number", "9", `{"expectedNumber":3}`))

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sevenboom_events_total{event="game_start"} 1`)
	assert.Contains(t, body, `sevenboom_events_total{event="turn_attempt"} 2`)
	assert.Contains(t, body, `sevenboom_games_started_total{starter="caller"} 1`)
	assert.Contains(t, body, `sevenboom_turns_total{result="success"} 1`)
	assert.Contains(t, body, `sevenboom_turns_total{result="retry"} 1`)
}

func TestMetrics_OpsToken(t *testing.T) {
	cfg := testConfig()
	cfg.OpsJWTSecret = "s3cret"
	s := newTestServer(t, cfg, 1)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _, err := opsauth.Sign("s3cret", "ops", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	s := newTestServer(t, cfg, 1)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/metrics", "").Code)
}
