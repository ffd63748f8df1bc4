// Package rubric compiles model-proposed raw grading evidence into canonical,
// checkable rubrics. The transform is pure and deterministic: no model calls,
// no side effects.
package rubric

import (
	"fmt"
	"strings"

	"github.com/castrumai/examai/internal/model"
)

// completenessKeywords mark questions whose wording implies an exhaustive
// enumeration. A correct answer to such a question must cover every required
// element, so its accept criteria collapse into a single conjunctive clause.
var completenessKeywords = []string{
	"types",
	"classifications",
	"categories",
	"components",
	"differences",
	"features",
	"roles",
	"methods",
	"kinds",
	"stages",
	"elements",
}

// Compile converts raw evidence into a canonical rubric for the given
// question. Every rule is rewritten into the fixed evidence template; accept
// rules of a completeness-style question with two or more entries are joined
// into one AND clause.
func Compile(raw model.RawRubric, questionText string) model.CompiledRubric {
	accept := templateRules(raw.AcceptRules)
	reject := templateRules(raw.RejectRules)

	if len(accept) >= 2 && isCompletenessQuestion(questionText) {
		clauses := make([]string, len(accept))
		for i, a := range accept {
			clauses[i] = "(" + a + ")"
		}
		accept = []string{strings.Join(clauses, " AND ")}
	}

	return model.CompiledRubric{
		KeyConcept:     strings.TrimSpace(raw.KeyConcept),
		AcceptCriteria: accept,
		RejectCriteria: reject,
	}
}

func templateRules(rules []string) []string {
	var out []string
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, fmt.Sprintf("the answer contains '%s'", r))
	}
	return out
}

func isCompletenessQuestion(questionText string) bool {
	lower := strings.ToLower(questionText)
	for _, kw := range completenessKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
