package generate

import (
	"fmt"
	"strings"

	"github.com/castrumai/examai/internal/model"
)

const authorSystemPrompt = "You are an exam author. You write precise, self-contained exam questions " +
	"strictly from the source material provided by the user. You respond with a single JSON object " +
	"and nothing else."

func buildOpenEndedBatchPrompt(topics []string, passages []model.Passage, previous []string) string {
	var sb strings.Builder
	sb.WriteString("TASK: Write exam questions from the source material below.\n\n")
	writePassages(&sb, passages)

	sb.WriteString("RULES:\n")
	fmt.Fprintf(&sb, "- Produce exactly %d open-ended questions, one per listed sub-topic, in the listed order.\n", len(topics))
	sb.WriteString("- For each question, propose grading evidence: the key concept being tested, " +
		"statements whose presence in an answer indicates it is correct (accept_rules), " +
		"and statements whose presence indicates it is wrong (reject_rules).\n")
	writeNovelty(&sb, previous)
	sb.WriteString("\nSUB-TOPICS:\n")
	for i, t := range topics {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}

	sb.WriteString("\nRespond ONLY with this JSON structure:\n")
	sb.WriteString(`{"questions":[{"topic":"...","question":"..."}],` +
		`"evaluation_rubrics":[{"key_concept":"...","accept_rules":["..."],"reject_rules":["..."]}]}`)
	sb.WriteString("\nBoth arrays must have exactly one entry per sub-topic, aligned by position.\n")
	return sb.String()
}

func buildMCQBatchPrompt(topics []string, numChoices int, passages []model.Passage, previous []string) string {
	var sb strings.Builder
	sb.WriteString("TASK: Write multiple-choice exam questions from the source material below.\n\n")
	writePassages(&sb, passages)

	sb.WriteString("RULES:\n")
	fmt.Fprintf(&sb, "- Produce exactly %d questions, one per listed sub-topic, in the listed order.\n", len(topics))
	fmt.Fprintf(&sb, "- Every question has exactly %d options.\n", numChoices)
	sb.WriteString("- CRITICAL: the correct option is ALWAYS the FIRST element of its options list.\n")
	sb.WriteString("- Options are plain text with no letter prefixes.\n")
	writeNovelty(&sb, previous)
	sb.WriteString("\nSUB-TOPICS:\n")
	for i, t := range topics {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}

	sb.WriteString("\nRespond ONLY with this JSON structure:\n")
	sb.WriteString(`{"questions":["..."],"options":[["Correct Option","Distractor 1","Distractor 2"]]}`)
	sb.WriteString("\nBoth arrays must have exactly one entry per sub-topic, aligned by position.\n")
	return sb.String()
}

func buildVerbalPrompt(topic string, passages []model.Passage, previous []string) string {
	var sb strings.Builder
	sb.WriteString("TASK: Write one exam question, to be answered verbally, from the source material below.\n\n")
	writePassages(&sb, passages)

	sb.WriteString("RULES:\n")
	fmt.Fprintf(&sb, "- The question covers the sub-topic: %s\n", topic)
	sb.WriteString("- The question must be answerable in a short spoken response.\n")
	sb.WriteString("- Propose grading evidence: the key concept, accept_rules, and reject_rules.\n")
	writeNovelty(&sb, previous)

	sb.WriteString("\nRespond ONLY with this JSON structure:\n")
	sb.WriteString(`{"question":"...","evaluation_rubric":{"key_concept":"...","accept_rules":["..."],"reject_rules":["..."]}}`)
	sb.WriteString("\n")
	return sb.String()
}

func writePassages(sb *strings.Builder, passages []model.Passage) {
	sb.WriteString("SOURCE MATERIAL:\n")
	for _, p := range passages {
		fmt.Fprintf(sb, "[%s] %s\n", p.SourceFile, p.Content)
	}
	sb.WriteString("\n")
}

func writeNovelty(sb *strings.Builder, previous []string) {
	if len(previous) == 0 {
		return
	}
	sb.WriteString("- Avoid semantic overlap with these previously generated questions:\n")
	for _, q := range previous {
		fmt.Fprintf(sb, "  - %s\n", q)
	}
}
