package export

import (
	"context"
	"net/http"
	"strconv"

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

type Store interface {
	ExportXLSX(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID) (Result, error)
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
		tracer:        otel.Tracer("export/handler"),
		store:         store,
	}
}

// DownloadHandler handles GET /api/surveys/{surveyId}/export
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DownloadHandler")
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

	result, err := h.store.ExportXLSX(traceCtx, surveyID, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	if _, err := w.Write(result.Data); err != nil {
		logger.Warn("failed to stream export", zap.Error(err))
	}
}
