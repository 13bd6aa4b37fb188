package invite

import (
	"context"
	"fmt"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
)

type SendRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,required,email"`
}

type SendResponse struct {
	Message string `json:"message"`
	Sent    int    `json:"sent"`
}

type Store interface {
	SendInvites(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID, emails []string) (int, error)
}

type Handler struct {
	logger        *zap.Logger
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
	tracer        trace.Tracer

	store Store
}

func NewHandler(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, store Store) *Handler {
	return &Handler{
		logger:        logger,
		validator:     validator,
		problemWriter: problemWriter,
		tracer:        otel.Tracer("invite/handler"),
		store:         store,
	}
}

// SendHandler handles POST /api/surveys/{surveyId}/invites
func (h *Handler) SendHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SendHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	surveyID, err := handlerutil.ParseUUID(r.PathValue("surveyId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req SendRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	sent, err := h.store.SendInvites(traceCtx, surveyID, userID, req.Emails)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, SendResponse{
		Message: fmt.Sprintf("Invites sent successfully to %d recipients", sent),
		Sent:    sent,
	})
}
