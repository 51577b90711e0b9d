package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroundedBuilder_Build(t *testing.T) {
	got := NewGroundedBuilder("Be precise.", []string{
		"Paris is the capital of France.",
		"Berlin is the capital of Germany.",
	}, "capital of France?").Build()

	want := "Be precise.\n\n" +
		"Context:\n" +
		"Document 1: Paris is the capital of France.\n" +
		"Document 2: Berlin is the capital of Germany.\n" +
		"\n" +
		"Question: capital of France?\n" +
		"Answer:"
	assert.Equal(t, want, got)
}

func TestGroundedBuilder_DefaultsAndEmptyContext(t *testing.T) {
	got := NewGroundedBuilder("  ", nil, "anything?").Build()

	assert.True(t, strings.HasPrefix(got, DefaultInstruction))
	assert.NotContains(t, got, "Document 1:")
	assert.True(t, strings.HasSuffix(got, "Question: anything?\nAnswer:"))
}
