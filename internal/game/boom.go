package game

import (
	"strconv"
	"strings"
)

// IsBoomNumber reports whether n must be spoken as "BOOM": it is divisible by 7
// or its decimal form contains a 7. Zero is a boom number by the first rule, so
// callers must treat the "no game" sentinel before asking.
func IsBoomNumber(n int) bool {
	if n%7 == 0 {
		return true
	}
	return strings.ContainsRune(strconv.Itoa(n), '7')
}
