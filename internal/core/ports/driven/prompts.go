package driven

// Prompt names used by the assistant. Each maps to a user-editable
// file in the prompt directory.
const (
	// PromptTranslate converts a question plus the schema reference
	// into a structured query. Placeholders: schema reference, question.
	PromptTranslate = "query_translate"

	// PromptAnalyse turns retrieved data into a conversational answer.
	// Placeholders: question, formatted results.
	PromptAnalyse = "answer_analysis"
)

// PromptStore loads LLM prompt templates by name.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
