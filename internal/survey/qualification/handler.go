package qualification

import (
	"context"
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

type TestQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type SaveRequest struct {
	Topic     string                `json:"topic" validate:"required"`
	Questions []TestQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type AttemptRequest struct {
	RespondentEmail string      `json:"respondentEmail" validate:"required,email"`
	Answers         map[int]int `json:"answers" validate:"required"`
}

type TestResponse struct {
	Topic     string         `json:"topic"`
	Questions []TestQuestion `json:"questions"`
}

// PublicTestResponse carries the test without answer keys, for respondents.
type PublicTestResponse struct {
	Topic     string               `json:"topic"`
	Questions []PublicTestQuestion `json:"questions"`
}

type PublicTestQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type AttemptResponse struct {
	ScorePercent int  `json:"scorePercent"`
	Passed       bool `json:"passed"`
}

func toPublicResponse(t Test) PublicTestResponse {
	questions := make([]PublicTestQuestion, 0, len(t.Questions))
	for _, q := range t.Questions {
		questions = append(questions, PublicTestQuestion{
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return PublicTestResponse{Topic: t.Topic, Questions: questions}
}

type Store interface {
	Save(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID, test Test) (Test, error)
	GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (Test, error)
	DeleteBySurveyID(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID) error
	Attempt(ctx context.Context, surveyID uuid.UUID, respondentEmail string, answers map[int]int) (Attempt, error)
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
		tracer:        otel.Tracer("qualification/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SaveHandler")
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

	var req SaveRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	test := Test{Topic: req.Topic}
	for _, q := range req.Questions {
		test.Questions = append(test.Questions, TestQuestion{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	saved, err := h.store.Save(traceCtx, surveyID, userID, test)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, TestResponse{
		Topic:     saved.Topic,
		Questions: saved.Questions,
	})
}

// GetHandler returns the respondent-facing view of a survey's test, with
// answer keys stripped.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyID, err := handlerutil.ParseUUID(r.PathValue("surveyId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	test, err := h.store.GetBySurveyID(traceCtx, surveyID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, toPublicResponse(test))
}

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

	if err := h.store.DeleteBySurveyID(traceCtx, surveyID, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusNoContent, nil)
}

func (h *Handler) AttemptHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "AttemptHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	surveyID, err := handlerutil.ParseUUID(r.PathValue("surveyId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req AttemptRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	attempt, err := h.store.Attempt(traceCtx, surveyID, req.RespondentEmail, req.Answers)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, AttemptResponse{
		ScorePercent: int(attempt.ScorePercent),
		Passed:       attempt.Passed,
	})
}
