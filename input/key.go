// Package input resolves script key identifiers and answers key-press
// predicates for the program environment.
package input

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/milk9111/orbiter/program"
)

// Key is a lower-case letter or the space bar.
type Key rune

const KeySpace Key = ' '

func (k Key) String() string {
	if k == KeySpace {
		return "space"
	}
	return string(rune(k))
}

// ParseKey accepts a single ASCII letter in either case, " " or "space".
func ParseKey(identifier string) (Key, error) {
	if identifier == " " || strings.EqualFold(identifier, "space") {
		return KeySpace, nil
	}
	runes := []rune(identifier)
	if len(runes) == 1 && runes[0] < unicode.MaxASCII && unicode.IsLetter(runes[0]) {
		return Key(unicode.ToLower(runes[0])), nil
	}
	return 0, program.NewValidationFailure("Key press check", "char", fmt.Sprintf("No such key: %s", identifier))
}

// AllKeys returns a..z followed by space.
func AllKeys() []Key {
	keys := make([]Key, 0, 27)
	for r := 'a'; r <= 'z'; r++ {
		keys = append(keys, Key(r))
	}
	return append(keys, KeySpace)
}
