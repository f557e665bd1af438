package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBoomNumber(t *testing.T) {
	cases := map[int]bool{
		0: true, 1: false, 6: false, 7: true, 8: false, 14: true, 17: true,
		21: true, 27: true, 28: true, 30: false, 70: true, 71: true, 100: false, 107: true,
	}
	for n, want := range cases {
		assert.Equal(t, want, IsBoomNumber(n), "n=%d", n)
	}
}

func TestParseUtterance(t *testing.T) {
	assert.Equal(t, UtteranceBoom, ParseUtterance(" Boom ").Kind)

	u := ParseUtterance("12")
	assert.Equal(t, UtteranceNumber, u.Kind)
	assert.Equal(t, 12, u.Number)

	for _, raw := range []string{"", "?", "twelve", "1.5", "boomboom"} {
		assert.Equal(t, UtteranceInvalid, ParseUtterance(raw).Kind, "raw=%q", raw)
	}
}
