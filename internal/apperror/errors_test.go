package apperror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	err := New(KindGeneration, "chat.generate", context.DeadlineExceeded)

	assert.True(t, Is(err, KindGeneration))
	assert.False(t, Is(err, KindStorage))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "chat.generate: generation failure: context deadline exceeded", err.Error())
}

func TestNewKeepsInnerKindWhenUnknown(t *testing.T) {
	inner := New(KindStorage, "turn.append", errors.New("connection refused"))
	outer := New(KindUnknown, "chat.answer", inner)

	assert.Equal(t, KindStorage, KindOf(outer))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindUnknown))
	assert.Equal(t, "retrieval", KindRetrieval.String())
}
