package qualification

import (
	"context"
	"encoding/json"
	"errors"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
)

type Querier interface {
	Upsert(ctx context.Context, arg UpsertParams) (Row, error)
	GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (Row, error)
	DeleteBySurveyID(ctx context.Context, surveyID uuid.UUID) error
	CreateAttempt(ctx context.Context, arg CreateAttemptParams) (Attempt, error)
	HasPassedAttempt(ctx context.Context, surveyID uuid.UUID, respondentEmail string) (bool, error)
}

type SurveyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	queries     Querier
	surveyStore SurveyStore
}

func NewService(logger *zap.Logger, db DBTX, surveyStore SurveyStore) *Service {
	return &Service{
		logger:      logger,
		tracer:      otel.Tracer("qualification/service"),
		queries:     New(db),
		surveyStore: surveyStore,
	}
}

// Save validates and stores the qualification test for a survey, replacing
// any previous one. Malformed tests are rejected here, never at scoring time.
func (s *Service) Save(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID, test Test) (Test, error) {
	ctx, span := s.tracer.Start(ctx, "Save")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return Test{}, err
	}
	if target.OwnerID != ownerID {
		return Test{}, internal.ErrPermissionDenied
	}

	if err := test.Validate(); err != nil {
		span.RecordError(err)
		return Test{}, err
	}

	encoded, err := json.Marshal(test.Questions)
	if err != nil {
		return Test{}, err
	}

	row, err := s.queries.Upsert(ctx, UpsertParams{
		SurveyID:  surveyID,
		Topic:     test.Topic,
		Questions: encoded,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "upsert qualification test")
		span.RecordError(err)
		return Test{}, err
	}

	logger.Info("qualification test saved",
		zap.String("surveyID", surveyID.String()),
		zap.Int("questions", len(test.Questions)),
	)

	return fromRow(row)
}

func (s *Service) GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (Test, error) {
	ctx, span := s.tracer.Start(ctx, "GetBySurveyID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	row, err := s.queries.GetBySurveyID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Test{}, internal.ErrQualificationNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get qualification test")
		span.RecordError(err)
		return Test{}, err
	}

	return fromRow(row)
}

func (s *Service) DeleteBySurveyID(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "DeleteBySurveyID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if target.OwnerID != ownerID {
		return internal.ErrPermissionDenied
	}

	if err := s.queries.DeleteBySurveyID(ctx, surveyID); err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete qualification test")
		span.RecordError(err)
		return err
	}
	return nil
}

// Attempt scores a respondent's answers against the survey's test and records
// the outcome. The survey's pass threshold applies; what a failed attempt
// means for the respondent (blocked access) is the caller's transition.
func (s *Service) Attempt(ctx context.Context, surveyID uuid.UUID, respondentEmail string, answers map[int]int) (Attempt, error) {
	ctx, span := s.tracer.Start(ctx, "Attempt")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return Attempt{}, err
	}

	test, err := s.GetBySurveyID(ctx, surveyID)
	if err != nil {
		return Attempt{}, err
	}

	result, err := Score(test.Questions, answers, int(target.QualificationPassScore))
	if err != nil {
		span.RecordError(err)
		return Attempt{}, err
	}

	attempt, err := s.queries.CreateAttempt(ctx, CreateAttemptParams{
		SurveyID:        surveyID,
		RespondentEmail: respondentEmail,
		ScorePercent:    int32(result.ScorePercent),
		Passed:          result.Passed,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create qualification attempt")
		span.RecordError(err)
		return Attempt{}, err
	}

	logger.Info("qualification attempt scored",
		zap.String("surveyID", surveyID.String()),
		zap.Int("scorePercent", result.ScorePercent),
		zap.Bool("passed", result.Passed),
	)

	return attempt, nil
}

// HasPassed satisfies the response service's qualification gate.
func (s *Service) HasPassed(ctx context.Context, surveyID uuid.UUID, respondentEmail string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "HasPassed")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	passed, err := s.queries.HasPassedAttempt(ctx, surveyID, respondentEmail)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "check passing attempt")
		span.RecordError(err)
		return false, err
	}
	return passed, nil
}

func fromRow(row Row) (Test, error) {
	var questions []TestQuestion
	if len(row.Questions) > 0 {
		if err := json.Unmarshal(row.Questions, &questions); err != nil {
			return Test{}, err
		}
	}

	return Test{
		Topic:     row.Topic,
		Questions: questions,
	}, nil
}
