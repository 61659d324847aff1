package service

import "strings"

const mathFormatting = `
When writing mathematical expressions:
- Use $...$ for inline math (e.g. $E = mc^2$, $\alpha + \beta$)
- Use $$...$$ for display/block equations
- Always use LaTeX notation for formulas, Greek letters, subscripts, superscripts, fractions, etc.
- Write equations clearly using proper LaTeX commands (\frac, \sqrt, \int, \sum, \partial, etc.)
- Never write raw math symbols like "sigma"; always use LaTeX notation instead.
Use markdown formatting for everything else.`

const paperTemplate = "You are an expert research paper assistant. Below is the content of a research paper.\n" +
	"Answer questions about it accurately and cite specific sections when possible.\n" +
	"Be concise but thorough.\n" +
	mathFormatting +
	"\n\n--- PAPER CONTENT ---\n{paper_text}\n--- END PAPER CONTENT ---"

const askTemplate = "You are an expert research paper assistant.\n" +
	"The user has selected a specific passage from a research paper and wants you to explain it.\n" +
	"Provide a clear, helpful explanation. If the passage contains technical terms, define them.\n" +
	"Use the surrounding paper context to give accurate explanations.\n" +
	mathFormatting +
	"\n\n--- PAPER CONTEXT (surrounding pages) ---\n{paper_text}\n--- END PAPER CONTEXT ---"

func buildPaperPrompt(paperText string) string {
	return strings.Replace(paperTemplate, "{paper_text}", paperText, 1)
}

func buildAskPrompt(paperText string) string {
	return strings.Replace(askTemplate, "{paper_text}", paperText, 1)
}

func buildAskUserMessage(selected, question string) string {
	return "Selected passage:\n\n> " + selected + "\n\nQuestion: " + question
}
