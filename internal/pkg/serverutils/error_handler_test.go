package serverutils

import (
	"errors"
	"testing"

	"rag-chat-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", apperror.Newf(apperror.KindValidation, "chat.answer", "question must not be empty"), 400, "question must not be empty"},
		{"generation", apperror.New(apperror.KindGeneration, "chat.generate", errors.New("api key sk-123 rejected")), 500, internalErrorMessage},
		{"storage", apperror.New(apperror.KindStorage, "chat.record_user", errors.New("pq: relation missing")), 500, internalErrorMessage},
		{"plain error", errors.New("boom"), 500, internalErrorMessage},
		{"fiber error", fiber.ErrNotFound, 404, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := StatusOf(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

type sample struct {
	Question string `json:"question" validate:"required"`
	Limit    int    `json:"limit" validate:"min=0,max=200"`
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(sample{Question: "q", Limit: 10}))

	err := ValidateRequest(sample{Limit: 500})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "Question failed on required")
	assert.Contains(t, err.Error(), "Limit failed on max=200")
}
