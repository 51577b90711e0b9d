package serverutils

import (
	"errors"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "internal server error"

// ErrorHandlerMiddleware renders any error returned down the chain. Validation
// failures keep their message; everything else is logged and answered with a
// generic 500 so provider or database details never reach the client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, message := StatusOf(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"kind":   apperror.KindOf(err).String(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

// StatusOf maps an error to the HTTP status and client-safe message.
func StatusOf(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind == apperror.KindValidation {
		if appErr.Err != nil {
			return fiber.StatusBadRequest, appErr.Err.Error()
		}
		return fiber.StatusBadRequest, "invalid request"
	}
	return fiber.StatusInternalServerError, internalErrorMessage
}
