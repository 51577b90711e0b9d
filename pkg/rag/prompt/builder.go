package prompt

import (
	"fmt"
	"strings"
)

// DefaultInstruction is used when no assistant instruction is configured.
const DefaultInstruction = "You are a helpful assistant. Answer the user's question based on the documents provided. " +
	"If the answer is not found in the context, say that there is no information."

// GroundedBuilder assembles a prompt that grounds the answer in retrieved documents.
type GroundedBuilder struct {
	instruction string
	documents   []string
	question    string
}

// NewGroundedBuilder keeps documents in retrieval order; they are labelled from 1.
func NewGroundedBuilder(instruction string, documents []string, question string) *GroundedBuilder {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	return &GroundedBuilder{
		instruction: instruction,
		documents:   documents,
		question:    question,
	}
}

func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeInstruction(&prompt)
	b.writeContext(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeInstruction(prompt *strings.Builder) {
	prompt.WriteString(b.instruction)
	prompt.WriteString("\n\n")
}

func (b *GroundedBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("Context:\n")
	for i, doc := range b.documents {
		fmt.Fprintf(prompt, "Document %d: %s\n", i+1, doc)
	}
	prompt.WriteString("\n")
}

func (b *GroundedBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("Question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\nAnswer:")
}
