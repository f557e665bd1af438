package alexa

import "github.com/robalobadob/sevenboom/internal/game"

// ResponseEnvelope is the webhook's reply to the platform.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes game.GameState `json:"sessionAttributes"`
	Response          Response       `json:"response"`
}

type Response struct {
	OutputSpeech     OutputSpeech `json:"outputSpeech"`
	ShouldEndSession bool         `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

// NewResponse wraps a game reply in a response envelope.
func NewResponse(r game.Reply) ResponseEnvelope {
	return ResponseEnvelope{
		Version:           Version,
		SessionAttributes: r.State,
		Response: Response{
			OutputSpeech: OutputSpeech{
				Type: "SSML",
				SSML: "<speak>" + r.Speech + "</speak>",
			},
			ShouldEndSession: r.EndSession,
		},
	}
}
