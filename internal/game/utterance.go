package game

import (
	"strconv"
	"strings"
)

const boomToken = "boom"

// ParseUtterance classifies raw slot text. "boom" (any case) is the boom token,
// a decimal integer is a number, anything else is invalid and never matches.
func ParseUtterance(raw string) Utterance {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, boomToken) {
		return Utterance{Kind: UtteranceBoom, Raw: raw}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Utterance{Kind: UtteranceInvalid, Raw: raw}
	}
	return Utterance{Kind: UtteranceNumber, Number: n, Raw: raw}
}

// Matches applies the turn rule: a boom slot only accepts the boom token and a
// plain slot only accepts the exact number.
func (u Utterance) Matches(expected int) bool {
	if IsBoomNumber(expected) {
		return u.Kind == UtteranceBoom
	}
	return u.Kind == UtteranceNumber && u.Number == expected
}

func (u Utterance) String() string {
	switch u.Kind {
	case UtteranceNumber:
		return strconv.Itoa(u.Number)
	case UtteranceBoom:
		return boomToken
	}
	if s := strings.TrimSpace(u.Raw); s != "" {
		return s
	}
	return "nothing"
}
