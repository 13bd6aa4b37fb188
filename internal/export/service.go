package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SurveyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error)
}

type ResponseStore interface {
	ListBySurveyID(ctx context.Context, surveyID uuid.UUID) ([]response.SurveyResponse, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	surveyStore   SurveyStore
	responseStore ResponseStore
}

func NewService(logger *zap.Logger, surveyStore SurveyStore, responseStore ResponseStore) *Service {
	return &Service{
		logger:        logger,
		tracer:        otel.Tracer("export/service"),
		surveyStore:   surveyStore,
		responseStore: responseStore,
	}
}

// ExportXLSX renders every stored response for a survey as a spreadsheet, one
// row per respondent and one column per answerable question, with answers in
// their display form. Only the owner may export.
func (s *Service) ExportXLSX(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "ExportXLSX")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return Result{}, err
	}
	if target.OwnerID != ownerID {
		return Result{}, internal.ErrPermissionDenied
	}

	rows, err := s.responseStore.ListBySurveyID(ctx, surveyID)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	questions := target.AnswerableQuestions()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const sheet = "Responses"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return Result{}, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return Result{}, err
	}

	header := make([]interface{}, 0, len(questions)+2)
	header = append(header, "Submitted At", "Respondent Email")
	for _, q := range questions {
		header = append(header, q.Text)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return Result{}, err
	}

	rowNum := 2
	for _, item := range rows {
		var answers response.AnswerMap
		if err := json.Unmarshal(item.Answers, &answers); err != nil {
			logger.Warn("skipping response with corrupt answers",
				zap.String("responseID", item.ID.String()),
				zap.Error(err),
			)
			continue
		}

		cells := make([]interface{}, 0, len(questions)+2)
		cells = append(cells, item.SubmittedAt.Time.Format(time.RFC3339), item.RespondentEmail.String)
		for _, q := range questions {
			cells = append(cells, displayAnswer(q, answers[q.ID]))
		}
		if err := writeRow(f, sheet, rowNum, cells); err != nil {
			return Result{}, err
		}
		rowNum++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	filename := fmt.Sprintf("%s-responses.xlsx", surveyID.String())
	logger.Info("exported survey responses",
		zap.String("surveyID", surveyID.String()),
		zap.Int("responses", len(rows)),
	)

	return Result{
		Filename:    filename,
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

// displayAnswer renders a stored answer in human-readable form, falling back
// to the raw value when the question can no longer interpret it.
func displayAnswer(q question.Question, value string) string {
	if value == "" {
		return ""
	}
	answerable, err := question.Build(q)
	if err != nil {
		return value
	}
	return answerable.DisplayValue(value)
}
