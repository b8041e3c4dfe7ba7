package quiz

import (
	"fmt"
	"strings"
)

const generateSystemPrompt = `You are an exam coach writing quiz questions for a student. Questions must be answerable from the study material alone. Use plain text, no markdown.`

func buildGenerateUserMessage(content string, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d questions of %s difficulty.\n", opts.Count, opts.Difficulty)

	labels := make([]string, len(opts.Types))
	for i, t := range opts.Types {
		labels[i] = string(t)
	}
	fmt.Fprintf(&b, "Allowed question types: %s.\n", strings.Join(labels, ", "))

	if len(opts.WeakTopics) > 0 {
		fmt.Fprintf(&b, "Pay special attention to these topics the student has struggled with: %s.\n",
			strings.Join(opts.WeakTopics, ", "))
	}

	b.WriteString(`
Rules:
1. MultipleChoice questions have exactly 4 distinct options and the answer is the exact text of one option.
2. TrueFalse answers are "true" or "false".
3. FillInTheBlank answers are a single word or short phrase.
4. OpenEnded questions leave answer empty and give an idealAnswer.
5. Every question gets a hint that helps without revealing the answer.
`)

	b.WriteString("\nStudy material:\n---\n")
	b.WriteString(content)
	b.WriteString("\n---")
	return b.String()
}

const gradeSystemPrompt = `You grade a student's short answer. Judge by meaning, not exact wording, and be lenient with typos and grammar.`

func buildGradeUserMessage(q Question, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %q\n", q.Question)
	fmt.Fprintf(&b, "Expected answer: %q\n", q.IdealAnswer)
	fmt.Fprintf(&b, "Student answer: %q\n", answer)
	b.WriteString("\nIs the student's answer conveying the same information as the expected answer?")
	return b.String()
}
