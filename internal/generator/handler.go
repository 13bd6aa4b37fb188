package generator

import (
	"context"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ChatRequest struct {
	Messages []MessageRequest `json:"messages" validate:"required,min=1,dive"`
}

type MessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type Store interface {
	Chat(ctx context.Context, messages []Message) (ChatResult, error)
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store Store
}

func NewHandler(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, store Store) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("generator/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

// ChatHandler drives the AI-assisted authoring conversation. The response is
// either the assistant's next reply or, once the author signals completion,
// the generated question batch.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ChatHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req ChatRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	messages := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}

	result, err := h.store.Chat(traceCtx, messages)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, result)
}
