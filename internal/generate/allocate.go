// Package generate produces exam questions from retrieved corpus passages:
// topic allocation, batched structured-output completion calls, choice
// shuffling, and the bounded-retry verbal path.
package generate

import (
	"fmt"
	"math/rand"

	"github.com/castrumai/examai/internal/model"
)

// AllocateTopics distributes n questions across the sub-topic catalogue.
// When n fits the catalogue, it samples n distinct sub-topics. When n
// exceeds it, the full catalogue repeats floor(n/size) times and the
// remainder is sampled without replacement, so every sub-topic is used at
// least floor(n/size) times before any repeats. The combined list is
// shuffled so repeated topics are not clustered.
func AllocateTopics(subTopics []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	size := len(subTopics)
	if size == 0 {
		return nil, model.ErrNoSubTopics
	}

	var chosen []string
	if n <= size {
		chosen = sampleWithoutReplacement(subTopics, n)
	} else {
		full := n / size
		for i := 0; i < full; i++ {
			chosen = append(chosen, subTopics...)
		}
		chosen = append(chosen, sampleWithoutReplacement(subTopics, n%size)...)
	}

	rand.Shuffle(len(chosen), func(i, j int) {
		chosen[i], chosen[j] = chosen[j], chosen[i]
	})
	return chosen, nil
}

func sampleWithoutReplacement(items []string, k int) []string {
	out := make([]string, 0, k)
	for _, idx := range rand.Perm(len(items))[:k] {
		out = append(out, items[idx])
	}
	return out
}
