package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SubmitRequest struct {
	RespondentEmail string            `json:"respondentEmail" validate:"omitempty,email"`
	Answers         map[string]string `json:"answers" validate:"required"`
}

type Response struct {
	ID              uuid.UUID         `json:"id"`
	SurveyID        uuid.UUID         `json:"surveyId"`
	RespondentEmail string            `json:"respondentEmail,omitempty"`
	Answers         map[string]string `json:"answers"`
	SubmittedAt     time.Time         `json:"submittedAt"`
}

func ToResponse(r SurveyResponse) (Response, error) {
	var answers map[string]string
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &answers); err != nil {
			return Response{}, err
		}
	}

	return Response{
		ID:              r.ID,
		SurveyID:        r.SurveyID,
		RespondentEmail: r.RespondentEmail.String,
		Answers:         answers,
		SubmittedAt:     r.SubmittedAt.Time,
	}, nil
}

type Store interface {
	Submit(ctx context.Context, surveyID uuid.UUID, respondentEmail string, answers AnswerMap) (SurveyResponse, []error)
	Get(ctx context.Context, id uuid.UUID) (SurveyResponse, error)
	ListBySurveyID(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
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
		tracer:        otel.Tracer("response/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

// SubmitHandler accepts a respondent's completed answer map for a survey.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyIDStr := r.PathValue("surveyId")
	surveyID, err := handlerutil.ParseUUID(surveyIDStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req SubmitRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	created, errs := h.store.Submit(traceCtx, surveyID, req.RespondentEmail, AnswerMap(req.Answers))
	if len(errs) > 0 {
		if len(errs) == 1 {
			h.problemWriter.WriteError(traceCtx, w, errs[0], logger)
			return
		}

		errorStrings := make([]string, len(errs))
		for i, e := range errs {
			errorStrings[i] = e.Error()
		}
		combinedErr := errors.New("submission failed: [" + strings.Join(errorStrings, "; ") + "]")
		h.problemWriter.WriteError(traceCtx, w, combinedErr, logger)
		return
	}

	body, err := ToResponse(created)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, body)
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyIDStr := r.PathValue("surveyId")
	surveyID, err := handlerutil.ParseUUID(surveyIDStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	items, err := h.store.ListBySurveyID(traceCtx, surveyID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(items))
	for _, item := range items {
		body, err := ToResponse(item)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		responses = append(responses, body)
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	idStr := r.PathValue("responseId")
	id, err := handlerutil.ParseUUID(idStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	item, err := h.store.Get(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	body, err := ToResponse(item)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, body)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	idStr := r.PathValue("responseId")
	id, err := handlerutil.ParseUUID(idStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, id); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}
