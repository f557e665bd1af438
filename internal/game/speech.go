package game

import "strconv"

// SSML fragments. The webhook wraps the final text in <speak>.
const (
	BoomSpeech = `<emphasis level="moderate">BOOM</emphasis>`
	shortPause = `<break time="0.5s"/>`
	longPause  = `<break time="1s"/>`

	engineStartSpeech = "1"
	callerStartSpeech = "please start, say 1"

	HelpSpeech = "We take turns counting up from 1. " +
		"When a number can be divided by 7, or has a 7 in it, say boom instead. " + shortPause +
		" Say new game to start over."
	GoodbyeSpeech = "Thanks for playing Seven Boom. " + shortPause + " Goodbye!"
)

// renderNumber is what the engine says for n.
func renderNumber(n int) string {
	if IsBoomNumber(n) {
		return BoomSpeech
	}
	return strconv.Itoa(n)
}

// renderExpected names the value the caller should have said.
func renderExpected(n int) string {
	if IsBoomNumber(n) {
		return "BOOM"
	}
	return strconv.Itoa(n)
}

func startSpeech(s Starter) string {
	if s == StarterEngine {
		return engineStartSpeech
	}
	return callerStartSpeech
}

func retryMessage(heard Utterance) string {
	return "Oops, " + shortPause + " I heard " + heard.String() + ". " + shortPause + " Try that one again."
}

func restartMessage(expected int, heard Utterance, s Starter) string {
	cue := "now you start, say 1"
	if s == StarterEngine {
		cue = engineStartSpeech
	}
	return "Oops, " + shortPause + " it should be " + renderExpected(expected) +
		" and not " + heard.String() + ", " + longPause + " lets try again " + shortPause + " " + cue
}
