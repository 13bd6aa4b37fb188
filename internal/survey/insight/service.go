package insight

import (
	"context"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
	"gleamform/survey-backend/internal/survey/response"
)

type Sentiment struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Summary is the AI-generated narrative layered on top of the raw tallies.
type Summary struct {
	Sentiment              Sentiment `json:"sentiment"`
	KeyInsights            []string  `json:"keyInsights"`
	ImprovementSuggestions []string  `json:"improvementSuggestions"`
	Keywords               []string  `json:"keywords"`
	ExecutiveSummary       string    `json:"executiveSummary"`
}

// Report bundles the per-question statistics with the optional summary.
type Report struct {
	SurveyID      uuid.UUID      `json:"surveyId"`
	SurveyTitle   string         `json:"surveyTitle"`
	ResponseCount int            `json:"responseCount"`
	QuestionStats []QuestionStat `json:"questionStats"`
	Summary       *Summary       `json:"summary,omitempty"`
}

type SurveyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error)
}

type ResponseStore interface {
	AnswerMaps(ctx context.Context, surveyID uuid.UUID) ([]response.AnswerMap, error)
}

// Summarizer turns aggregated statistics into a narrative summary. It is an
// external producer; a failing summarizer degrades the report, never fails it.
type Summarizer interface {
	Summarize(ctx context.Context, title string, stats []QuestionStat) (Summary, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	surveyStore   SurveyStore
	responseStore ResponseStore
	summarizer    Summarizer
}

func NewService(logger *zap.Logger, surveyStore SurveyStore, responseStore ResponseStore, summarizer Summarizer) *Service {
	return &Service{
		logger:        logger,
		tracer:        otel.Tracer("insight/service"),
		surveyStore:   surveyStore,
		responseStore: responseStore,
		summarizer:    summarizer,
	}
}

// Report aggregates every stored response for the survey and, when a
// summarizer is configured, attaches its narrative. Only the owner may pull
// a report.
func (s *Service) Report(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "Report")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return Report{}, err
	}
	if target.OwnerID != ownerID {
		return Report{}, internal.ErrPermissionDenied
	}

	answerMaps, err := s.responseStore.AnswerMaps(ctx, surveyID)
	if err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	stats := Aggregate(target.AnswerableQuestions(), answerMaps)

	report := Report{
		SurveyID:      target.ID,
		SurveyTitle:   target.Title,
		ResponseCount: len(answerMaps),
		QuestionStats: stats,
	}

	if s.summarizer == nil || len(answerMaps) == 0 {
		return report, nil
	}

	summary, err := s.summarizer.Summarize(ctx, target.Title, stats)
	if err != nil {
		span.RecordError(err)
		logger.Warn("summarizer failed, returning statistics only",
			zap.String("surveyID", surveyID.String()),
			zap.Error(err),
		)
		return report, nil
	}
	report.Summary = &summary

	return report, nil
}
