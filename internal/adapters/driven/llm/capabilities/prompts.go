package capabilities

import (
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// Fallback templates used when no PromptStore is configured. They match the
// defaults written to ~/.repoqa/prompts.
const (
	defaultClassifyPrompt = `You are a smart assistant helping decide which type of code a user's question is about.

Files:
%[2]s

Question: "%[3]s"

Classify the question as one of: %[1]s.
Reply with the label only.`

	defaultAnswerPrompt = `You are a helpful coding assistant. Use the following context to answer the user's question.

---
Code Context:
%[1]s

User Question:
%[2]s

---

Your Task:
- Extract and explain only the relevant code.
- Summarize the project layout for general/directory questions.
- Be concise and helpful.`
)

// promptLoader resolves templates from an optional store.
type promptLoader struct {
	store driven.PromptStore
}

func (l *promptLoader) load(name, fallback string) string {
	if l.store == nil {
		return fallback
	}
	prompt, err := l.store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
