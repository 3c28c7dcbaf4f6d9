package notes

import "fmt"

const chunkPromptTemplate = `You are an expert study-notes author analysing an excerpt from "%s" (chunk #%d).

Output ONLY valid JSON. Do not include any preamble, explanation, greeting,
or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Return an object with exactly these keys:
- summary: concise paragraph (<=120 words).
- insights: list of 3 key takeaways (phrases or short sentences).
- questions: list of 2 thoughtful follow-up questions.
- quotes: list of objects with fields text and context (context explains significance). Keep quotes <=200 characters.

TEXT:
%s

JSON OUTPUT:`

const overviewPromptTemplate = `You are preparing a study overview for the project "%s".

Output ONLY valid JSON. Start your response directly with the opening brace {
and end with the closing brace }. Using the notes below, return an object
with exactly these keys:
- overview: one paragraph synopsis (<=150 words).
- themes: list of 3-5 overarching themes.
- action_items: list of 2-3 recommended follow-up study actions.

NOTES:
%s

JSON OUTPUT:`

// chunkPrompt builds the per-chunk note prompt.
func chunkPrompt(document string, index int, text string) string {
	return fmt.Sprintf(chunkPromptTemplate, document, index, text)
}

// overviewPrompt builds the job-level overview prompt.
func overviewPrompt(projectLabel, notesText string) string {
	return fmt.Sprintf(overviewPromptTemplate, projectLabel, notesText)
}
