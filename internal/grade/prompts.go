package grade

import (
	"fmt"
	"strings"

	"github.com/castrumai/examai/internal/model"
)

const judgeSystemPrompt = `You are an exam grader. For each answer, apply this protocol exactly:

STEP 1 - REJECT CHECK: If the answer provides evidence matching ANY reject criterion, the verdict is "wrong". Stop; reject criteria take absolute precedence over any accept match.

STEP 2 - ACCEPT CHECK: Evaluate each accept criterion. A criterion joined with "AND" is satisfied only if ALL of its sub-conditions are evidenced in the answer. The verdict is "correct" if at least one accept criterion is fully satisfied, otherwise "wrong".

Respond ONLY with a JSON object: {"results":["correct"|"wrong", ...],"reasonings":["...", ...]}.
Both arrays must have exactly one entry per answer, in the given order.`

func buildJudgePrompt(batch []model.GradeItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade the following %d answers.\n\n", len(batch))
	for i, item := range batch {
		fmt.Fprintf(&sb, "ANSWER %d\n", i+1)
		if item.SubTopic != "" {
			fmt.Fprintf(&sb, "Topic: %s\n", item.SubTopic)
		}
		fmt.Fprintf(&sb, "Question: %s\n", item.Question)
		writeRubric(&sb, item.Rubric)
		fmt.Fprintf(&sb, "Student answer: %s\n\n", item.Answer)
	}
	return sb.String()
}

func writeRubric(sb *strings.Builder, r model.CompiledRubric) {
	if r.KeyConcept != "" {
		fmt.Fprintf(sb, "Key concept: %s\n", r.KeyConcept)
	}
	if len(r.AcceptCriteria) > 0 {
		sb.WriteString("Accept criteria (any one suffices):\n")
		for _, a := range r.AcceptCriteria {
			fmt.Fprintf(sb, "- %s\n", a)
		}
	}
	if len(r.RejectCriteria) > 0 {
		sb.WriteString("Reject criteria (absolute precedence):\n")
		for _, rej := range r.RejectCriteria {
			fmt.Fprintf(sb, "- %s\n", rej)
		}
	}
}
