package generate

import (
	"fmt"
	"math/rand"
)

// FinalizeChoices shuffles one question's option list and derives its answer
// key. By prompt contract the correct option arrives first; the shuffle
// tracks its pre-shuffle position through the permutation rather than
// searching by text, so duplicate option texts cannot mislabel the key.
// Returns the lettered display options ("A) ...") and the correct letter.
func FinalizeChoices(options []string) ([]string, string, error) {
	if len(options) == 0 {
		return nil, "", fmt.Errorf("empty option list")
	}
	if len(options) > 26 {
		return nil, "", fmt.Errorf("too many options: %d", len(options))
	}

	perm := rand.Perm(len(options))
	shuffled := make([]string, len(options))
	correctIndex := -1
	for newPos, origPos := range perm {
		shuffled[newPos] = options[origPos]
		if origPos == 0 {
			correctIndex = newPos
		}
	}

	lettered := make([]string, len(shuffled))
	for i, opt := range shuffled {
		lettered[i] = fmt.Sprintf("%c) %s", 'A'+i, opt)
	}
	return lettered, string(rune('A' + correctIndex)), nil
}
