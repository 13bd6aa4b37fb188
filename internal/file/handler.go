package file

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

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

type Response struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(id uuid.UUID, filename, contentType string, size int64, createdAt time.Time) Response {
	return Response{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		URL:         "/api/images/" + id.String(),
		CreatedAt:   createdAt,
	}
}

type Store interface {
	Save(ctx context.Context, content io.Reader, filename string, uploadedBy uuid.UUID) (Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (Image, error)
	ListByUploader(ctx context.Context, uploadedBy uuid.UUID) ([]Metadata, error)
	Delete(ctx context.Context, id uuid.UUID, requesterID uuid.UUID) error
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
		tracer:        otel.Tracer("file/handler"),
		store:         store,
	}
}

// UploadHandler handles POST /api/images, a multipart upload under the
// "image" field.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UploadHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrImageTooLarge, logger)
		return
	}

	upload, header, err := r.FormFile("image")
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidImageFormat, logger)
		return
	}
	defer func() {
		_ = upload.Close()
	}()

	image, err := h.store.Save(traceCtx, upload, header.Filename, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated,
		toResponse(image.ID, image.Filename, image.ContentType, image.Size, image.CreatedAt.Time))
}

// DownloadHandler handles GET /api/images/{id}. Respondents load question
// images through this route, so it requires no authentication.
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DownloadHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	imageID, err := handlerutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	image, err := h.store.GetByID(traceCtx, imageID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(image.Size, 10))
	http.ServeContent(w, r, image.Filename, image.CreatedAt.Time, bytes.NewReader(image.Data))
}

// ListMineHandler handles GET /api/images
func (h *Handler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListMineHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	items, err := h.store.ListByUploader(traceCtx, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item.ID, item.Filename, item.ContentType, item.Size, item.CreatedAt.Time))
	}
	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

// DeleteHandler handles DELETE /api/images/{id}
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	imageID, err := handlerutil.ParseUUID(r.PathValue("id"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, imageID, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
