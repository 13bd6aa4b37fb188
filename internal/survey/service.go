package survey

import (
	"context"
	"errors"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/section"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Row, error)
	Update(ctx context.Context, arg UpdateParams) (Row, error)
	SetStatus(ctx context.Context, arg SetStatusParams) (Row, error)
	GetByID(ctx context.Context, id uuid.UUID) (Row, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Row, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("survey/service"),
	}
}

// Draft is the author-supplied part of a survey definition. Questions pass
// through question.Normalize before storage so whatever an editor or the AI
// assistant produced ends up in canonical shape.
type Draft struct {
	Title                  string
	Template               section.Template
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             string
	Questions              []question.Question
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, draft Draft) (Survey, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	draft, err := normalizeDraft(draft)
	if err != nil {
		span.RecordError(err)
		return Survey{}, err
	}

	definition, err := encodeDefinition(draft.Questions)
	if err != nil {
		span.RecordError(err)
		return Survey{}, err
	}

	row, err := s.queries.Create(ctx, CreateParams{
		OwnerID:                ownerID,
		Title:                  draft.Title,
		Template:               string(draft.Template),
		RequireQualification:   draft.RequireQualification,
		QualificationPassScore: draft.QualificationPassScore,
		ThemeColor:             pgtype.Text{String: draft.ThemeColor, Valid: draft.ThemeColor != ""},
		Definition:             definition,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create survey")
		span.RecordError(err)
		return Survey{}, err
	}

	logger.Info("survey created", zap.String("surveyID", row.ID.String()), zap.Int("questions", len(draft.Questions)))

	return fromRow(row)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, draft Draft) (Survey, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Survey{}, err
	}
	if existing.OwnerID != ownerID {
		return Survey{}, internal.ErrPermissionDenied
	}

	draft, err = normalizeDraft(draft)
	if err != nil {
		span.RecordError(err)
		return Survey{}, err
	}

	definition, err := encodeDefinition(draft.Questions)
	if err != nil {
		span.RecordError(err)
		return Survey{}, err
	}

	row, err := s.queries.Update(ctx, UpdateParams{
		ID:                     id,
		Title:                  draft.Title,
		Template:               string(draft.Template),
		RequireQualification:   draft.RequireQualification,
		QualificationPassScore: draft.QualificationPassScore,
		ThemeColor:             pgtype.Text{String: draft.ThemeColor, Valid: draft.ThemeColor != ""},
		Definition:             definition,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "update survey")
		span.RecordError(err)
		return Survey{}, err
	}

	return fromRow(row)
}

// Publish moves a draft survey to published. A survey cannot go out without a
// title, and a closed survey stays closed.
func (s *Service) Publish(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (Survey, error) {
	ctx, span := s.tracer.Start(ctx, "Publish")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Survey{}, err
	}
	if existing.OwnerID != ownerID {
		return Survey{}, internal.ErrPermissionDenied
	}
	if existing.Title == "" {
		return Survey{}, internal.ErrSurveyTitleRequired
	}
	if existing.Status != StatusDraft {
		return Survey{}, internal.ErrSurveyNotDraft
	}

	row, err := s.queries.SetStatus(ctx, SetStatusParams{ID: id, Status: string(StatusPublished)})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "publish survey")
		span.RecordError(err)
		return Survey{}, err
	}

	logger.Info("survey published", zap.String("surveyID", id.String()))

	return fromRow(row)
}

func (s *Service) Close(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (Survey, error) {
	ctx, span := s.tracer.Start(ctx, "Close")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Survey{}, err
	}
	if existing.OwnerID != ownerID {
		return Survey{}, internal.ErrPermissionDenied
	}
	if existing.Status != StatusPublished {
		return Survey{}, internal.ErrSurveyNotPublished
	}

	row, err := s.queries.SetStatus(ctx, SetStatusParams{ID: id, Status: string(StatusClosed)})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "close survey")
		span.RecordError(err)
		return Survey{}, err
	}

	return fromRow(row)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Survey, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	row, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Survey{}, internal.ErrSurveyNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get survey by id")
		span.RecordError(err)
		return Survey{}, err
	}

	return fromRow(row)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Survey, error) {
	ctx, span := s.tracer.Start(ctx, "ListByOwner")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	rows, err := s.queries.ListByOwner(ctx, ownerID)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list surveys by owner")
		span.RecordError(err)
		return nil, err
	}

	surveys := make([]Survey, 0, len(rows))
	for _, row := range rows {
		item, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, item)
	}
	return surveys, nil
}

func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "Exists")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	exists, err := s.queries.Exists(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "check survey exists")
		span.RecordError(err)
		return false, err
	}
	return exists, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return internal.ErrPermissionDenied
	}

	err = s.queries.Delete(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete survey")
		span.RecordError(err)
		return err
	}

	logger.Info("survey deleted", zap.String("surveyID", id.String()))

	return nil
}

func normalizeDraft(draft Draft) (Draft, error) {
	if !draft.Template.Valid() {
		draft.Template = section.TemplateSingleColumn
	}
	if draft.QualificationPassScore <= 0 || draft.QualificationPassScore > 100 {
		draft.QualificationPassScore = DefaultPassScore
	}
	if draft.ThemeColor != "" {
		if _, err := HexToHSL(draft.ThemeColor); err != nil {
			return Draft{}, err
		}
	}

	normalized := make([]question.Question, 0, len(draft.Questions))
	seen := make(map[string]bool, len(draft.Questions))
	for _, q := range draft.Questions {
		q = question.Normalize(q)
		if seen[q.ID] {
			return Draft{}, internal.ErrDuplicateQuestionID
		}
		seen[q.ID] = true
		normalized = append(normalized, q)
	}
	draft.Questions = normalized

	return draft, nil
}

func fromRow(row Row) (Survey, error) {
	questions, err := decodeDefinition(row.Definition)
	if err != nil {
		return Survey{}, err
	}

	return Survey{
		ID:                     row.ID,
		OwnerID:                row.OwnerID,
		Title:                  row.Title,
		Template:               section.Template(row.Template),
		RequireQualification:   row.RequireQualification,
		QualificationPassScore: row.QualificationPassScore,
		ThemeColor:             row.ThemeColor.String,
		Status:                 Status(row.Status),
		Questions:              questions,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}, nil
}
