package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
	"gleamform/survey-backend/internal/survey/question"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (SurveyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (SurveyResponse, error)
	ListBySurveyID(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error)
	CountBySurveyID(ctx context.Context, surveyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SurveyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error)
}

// QualificationStore reports whether a respondent holds a passing attempt for
// a survey's qualification test.
type QualificationStore interface {
	HasPassed(ctx context.Context, surveyID uuid.UUID, respondentEmail string) (bool, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	queries            Querier
	surveyStore        SurveyStore
	qualificationStore QualificationStore
}

func NewService(logger *zap.Logger, db DBTX, surveyStore SurveyStore, qualificationStore QualificationStore) *Service {
	return &Service{
		logger:             logger,
		tracer:             otel.Tracer("response/service"),
		queries:            New(db),
		surveyStore:        surveyStore,
		qualificationStore: qualificationStore,
	}
}

// Submit validates a respondent's answers against the whole survey and stores
// them. The gate order is: survey must be published; a qualification-gated
// survey needs a passing attempt on record; every required question must have
// an answer (whole survey, not just the final section, because a respondent
// can erase an earlier answer after that section passed); and each answer must
// be valid for its question type. Answer validation errors accumulate so the
// respondent sees everything wrong at once.
func (s *Service) Submit(ctx context.Context, surveyID uuid.UUID, respondentEmail string, answers AnswerMap) (SurveyResponse, []error) {
	ctx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return SurveyResponse{}, []error{err}
	}

	if target.Status != survey.StatusPublished {
		return SurveyResponse{}, []error{internal.ErrSurveyClosed}
	}

	if target.RequireQualification {
		passed, err := s.qualificationStore.HasPassed(ctx, surveyID, respondentEmail)
		if err != nil {
			return SurveyResponse{}, []error{err}
		}
		if !passed {
			return SurveyResponse{}, []error{internal.ErrQualificationRequired}
		}
	}

	if result := ValidateSurvey(target.Questions, answers); !result.OK {
		incomplete := internal.ErrIncompleteAnswers{}
		for _, q := range result.Missing {
			incomplete.MissingQuestions = append(incomplete.MissingQuestions, struct {
				ID   string
				Text string
			}{ID: q.ID, Text: q.Text})
		}
		return SurveyResponse{}, []error{incomplete}
	}

	validationErrors := make([]error, 0)
	for id, value := range answers {
		q, found := target.QuestionByID(id)
		if !found {
			validationErrors = append(validationErrors, fmt.Errorf("question with ID %s not found in survey %s", id, surveyID))
			continue
		}

		answerable, err := question.Build(q)
		if err != nil {
			validationErrors = append(validationErrors, err)
			continue
		}

		if err := answerable.Validate(value); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("validation error for question ID %s: %w", id, err))
		}
	}

	if len(validationErrors) > 0 {
		logger.Warn("submission rejected by answer validation",
			zap.String("surveyID", surveyID.String()),
			zap.Int("errors", len(validationErrors)),
		)
		span.RecordError(internal.ErrValidationFailed)
		return SurveyResponse{}, append([]error{internal.ErrValidationFailed}, validationErrors...)
	}

	encoded, err := json.Marshal(answers)
	if err != nil {
		return SurveyResponse{}, []error{err}
	}

	created, err := s.queries.Create(ctx, CreateParams{
		SurveyID:        surveyID,
		RespondentEmail: pgtype.Text{String: respondentEmail, Valid: respondentEmail != ""},
		Answers:         encoded,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create survey response")
		span.RecordError(err)
		return SurveyResponse{}, []error{err}
	}

	logger.Info("response stored",
		zap.String("surveyID", surveyID.String()),
		zap.String("responseID", created.ID.String()),
		zap.Int("answers", len(answers)),
	)

	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (SurveyResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	resp, err := s.queries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SurveyResponse{}, internal.ErrResponseNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get response")
		span.RecordError(err)
		return SurveyResponse{}, err
	}
	return resp, nil
}

func (s *Service) ListBySurveyID(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ListBySurveyID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	items, err := s.queries.ListBySurveyID(ctx, surveyID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list responses by survey")
		span.RecordError(err)
		return nil, err
	}
	return items, nil
}

// AnswerMaps decodes the stored answer documents for a survey, the input the
// aggregator and exporter consume.
func (s *Service) AnswerMaps(ctx context.Context, surveyID uuid.UUID) ([]AnswerMap, error) {
	ctx, span := s.tracer.Start(ctx, "AnswerMaps")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	items, err := s.ListBySurveyID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	maps := make([]AnswerMap, 0, len(items))
	for _, item := range items {
		var m AnswerMap
		if err := json.Unmarshal(item.Answers, &m); err != nil {
			// A corrupt stored document should not sink the whole report.
			logger.Warn("skipping undecodable response answers",
				zap.String("responseID", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func (s *Service) CountBySurveyID(ctx context.Context, surveyID uuid.UUID) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "CountBySurveyID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	count, err := s.queries.CountBySurveyID(ctx, surveyID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "count responses by survey")
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	err := s.queries.Delete(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete response")
		span.RecordError(err)
		return err
	}
	return nil
}
