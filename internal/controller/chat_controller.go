package controller

import (
	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/chat/v1", middleware...)
	h.Post("/ask", c.Ask)
	h.Get("/sessions/:id/history", c.History)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.New(apperror.KindValidation, "request.parse", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Answer(ctx.UserContext(), req.Question, req.SessionId)
	if err != nil {
		return err
	}

	sources := make([]dto.SourceDTO, 0, len(res.Sources))
	for _, s := range res.Sources {
		sources = append(sources, dto.SourceDTO{
			Id:       s.Chunk.Id,
			Text:     s.Chunk.Text,
			Distance: s.Distance,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", &dto.AskResponse{
		Answer:    res.Answer,
		SessionId: res.SessionId,
		Sources:   sources,
	}))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	var query dto.HistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.New(apperror.KindValidation, "request.parse", err)
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	turns, err := c.service.History(ctx.UserContext(), sessionId, query.Limit, query.Offset)
	if err != nil {
		return err
	}

	res := &dto.HistoryResponse{
		SessionId: sessionId,
		Turns:     make([]*dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		res.Turns = append(res.Turns, &dto.TurnResponse{
			Id:             t.Id,
			Role:           t.Role,
			Content:        t.Content,
			SourceChunkIds: t.SourceChunkIds,
			Ts:             t.Ts,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}
