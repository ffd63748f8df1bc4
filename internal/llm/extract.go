package llm

import (
	"regexp"
	"strings"
)

var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON returns the payload of a fenced ```json code block if the
// response is wrapped in one, otherwise the trimmed response itself. Models
// routinely fence structured output despite instructions not to.
func ExtractJSON(response string) string {
	if m := fencedBlockRegex.FindStringSubmatch(response); m != nil {
		return m[1]
	}
	return strings.TrimSpace(response)
}
