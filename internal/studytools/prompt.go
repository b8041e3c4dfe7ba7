package studytools

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = `You are a study assistant who writes clear, exam-focused study notes.`

func buildSummaryUserMessage(text string) string {
	return "Summarize the following text for a student preparing for an exam. " +
		"Focus on the key concepts, definitions, and main points. " +
		"The summary should be well-structured and easy to digest:\n\n---\n" + text + "\n---"
}

const explainSystemPrompt = `You are a patient programming teacher. Explain code to a student step by step in plain language.`

func buildExplainUserMessage(code string) string {
	return "Explain what the following code does. Start with a one-paragraph overview, " +
		"then walk through it section by section, and finish with any pitfalls worth noticing.\n\n```\n" + code + "\n```"
}

const labReportSystemPrompt = `You are a lab assistant who writes concise, well-organized lab reports for students.`

func buildLabReportUserMessage(code, results string) string {
	var b strings.Builder
	b.WriteString("Write a lab report with the sections Aim, Procedure, Observations, Results and Conclusion.\n")
	if code != "" {
		fmt.Fprintf(&b, "\nExperiment code:\n```\n%s\n```\n", code)
	}
	if results != "" {
		fmt.Fprintf(&b, "\nRecorded results:\n---\n%s\n---\n", results)
	}
	return b.String()
}

const diagramSystemPrompt = `You turn study material into Mermaid.js diagrams. Only output the Mermaid script inside a single ` + "```mermaid" + ` code block. Do not add any other explanatory text.`

func buildDiagramUserMessage(text string) string {
	return "Analyze the following text and generate a Mermaid.js graph visualization script " +
		"(e.g., flowchart, mindmap, sequence diagram) that represents the key concepts and their relationships.\n\n" +
		"IMPORTANT RULE: To avoid syntax errors, all text within nodes must be enclosed in double quotes. " +
		`For example, use A["Node text with (parentheses)"] instead of A[Node text with (parentheses)].` +
		"\n\nText to analyze:\n---\n" + text + "\n---"
}

const audioSystemPrompt = `You write narration scripts for spoken study summaries. Write for the ear: short sentences, no markdown, no lists, no headings.`

func buildAudioUserMessage(text string) string {
	return "Write a two to three minute spoken summary of the following material, " +
		"as if a friendly teacher were recording it for a student to listen to on the way to an exam:\n\n---\n" + text + "\n---"
}

// NotFoundReply is what the tutor says when the material does not cover a
// question.
const NotFoundReply = "I can't find information about that in your study material."

func buildTutorSystemPrompt(material string) string {
	return "You are an expert AI tutor. Your knowledge is strictly limited to the following text provided by the user. " +
		"Do not answer any questions outside of this context. Be helpful, encouraging, and break down complex topics into simple explanations. " +
		"When asked a question, find the relevant information from the text and explain it clearly. " +
		"Do not make up information or answer questions on other subjects. " +
		`If you cannot find an answer in the text, say "` + NotFoundReply + `" Here is the study material:` +
		"\n\n---\n" + material + "\n---"
}
