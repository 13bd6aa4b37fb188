package survey

import (
	"context"
	"net/http"
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
	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/section"
)

type DraftRequest struct {
	Title                  string              `json:"title" validate:"required,max=200"`
	Template               string              `json:"template" validate:"survey_template"`
	RequireQualification   bool                `json:"requireQualification"`
	QualificationPassScore int32               `json:"qualificationPassScore" validate:"omitempty,min=1,max=100"`
	ThemeColor             string              `json:"themeColor" validate:"theme_color"`
	Questions              []question.Question `json:"questions"`
}

type Response struct {
	ID                     uuid.UUID           `json:"id"`
	OwnerID                uuid.UUID           `json:"ownerId"`
	Title                  string              `json:"title"`
	Template               string              `json:"template"`
	RequireQualification   bool                `json:"requireQualification"`
	QualificationPassScore int32               `json:"qualificationPassScore"`
	ThemeColor             string              `json:"themeColor,omitempty"`
	ThemeHSL               *HSL                `json:"themeHsl,omitempty"`
	Status                 string              `json:"status"`
	Questions              []question.Question `json:"questions"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

type SectionResponse struct {
	Title     string              `json:"title"`
	Questions []question.Question `json:"questions"`
}

func ToResponse(s Survey) Response {
	resp := Response{
		ID:                     s.ID,
		OwnerID:                s.OwnerID,
		Title:                  s.Title,
		Template:               string(s.Template),
		RequireQualification:   s.RequireQualification,
		QualificationPassScore: s.QualificationPassScore,
		ThemeColor:             s.ThemeColor,
		Status:                 string(s.Status),
		Questions:              s.Questions,
		CreatedAt:              s.CreatedAt.Time,
		UpdatedAt:              s.UpdatedAt.Time,
	}
	if resp.Questions == nil {
		resp.Questions = []question.Question{}
	}
	if s.ThemeColor != "" {
		// Stored colors already passed validation, a decode failure here
		// means the row predates it; render without the derived form.
		if hsl, err := HexToHSL(s.ThemeColor); err == nil {
			resp.ThemeHSL = &hsl
		}
	}
	return resp
}

func toSectionResponses(sections []section.Section) []SectionResponse {
	out := make([]SectionResponse, 0, len(sections))
	for _, s := range sections {
		questions := s.Questions
		if questions == nil {
			questions = []question.Question{}
		}
		out = append(out, SectionResponse{Title: s.Title, Questions: questions})
	}
	return out
}

type Store interface {
	Create(ctx context.Context, ownerID uuid.UUID, draft Draft) (Survey, error)
	Update(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, draft Draft) (Survey, error)
	Publish(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (Survey, error)
	Close(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (Survey, error)
	GetByID(ctx context.Context, id uuid.UUID) (Survey, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Survey, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
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
		tracer:        otel.Tracer("survey/handler"),
		store:         store,
	}
}

// CreateHandler handles POST /api/surveys
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "CreateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	var req DraftRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	created, err := h.store.Create(traceCtx, userID, toDraft(req))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(created))
}

// UpdateHandler handles PUT /api/surveys/{surveyId}
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UpdateHandler")
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

	var req DraftRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updated, err := h.store.Update(traceCtx, surveyID, userID, toDraft(req))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updated))
}

// GetHandler handles GET /api/surveys/{surveyId}. Respondents load surveys
// through this route too, so it requires no authentication.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyID, err := handlerutil.ParseUUID(r.PathValue("surveyId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	target, err := h.store.GetByID(traceCtx, surveyID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(target))
}

// ListMineHandler handles GET /api/surveys
func (h *Handler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListMineHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	userID, ok := internal.GetUserIDFromContext(traceCtx)
	if !ok {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrNoUserInContext, logger)
		return
	}

	surveys, err := h.store.ListByOwner(traceCtx, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(surveys))
	for _, s := range surveys {
		responses = append(responses, ToResponse(s))
	}
	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

// DeleteHandler handles DELETE /api/surveys/{surveyId}
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
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

	if err := h.store.Delete(traceCtx, surveyID, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PublishHandler handles POST /api/surveys/{surveyId}/publish
func (h *Handler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "PublishHandler")
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

	published, err := h.store.Publish(traceCtx, surveyID, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(published))
}

// CloseHandler handles POST /api/surveys/{surveyId}/close
func (h *Handler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "CloseHandler")
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

	closed, err := h.store.Close(traceCtx, surveyID, userID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(closed))
}

// SectionsHandler handles GET /api/surveys/{surveyId}/sections, the derived
// page structure respondent clients navigate.
func (h *Handler) SectionsHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SectionsHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyID, err := handlerutil.ParseUUID(r.PathValue("surveyId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	target, err := h.store.GetByID(traceCtx, surveyID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, toSectionResponses(target.Sections()))
}

func toDraft(req DraftRequest) Draft {
	return Draft{
		Title:                  req.Title,
		Template:               section.Template(req.Template),
		RequireQualification:   req.RequireQualification,
		QualificationPassScore: req.QualificationPassScore,
		ThemeColor:             req.ThemeColor,
		Questions:              req.Questions,
	}
}
