package invite

import (
	"context"
	"fmt"
	"strings"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
)

type SurveyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error)
}

type Sender interface {
	Available() bool
	Send(to string, subject string, textBody string) error
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	surveyStore SurveyStore
	sender      Sender
	// publicBaseURL is where respondents fill surveys in, e.g. the frontend
	// origin, not this API's base URL.
	publicBaseURL string
}

func NewService(logger *zap.Logger, surveyStore SurveyStore, sender Sender, publicBaseURL string) *Service {
	return &Service{
		logger:        logger,
		tracer:        otel.Tracer("invite/service"),
		surveyStore:   surveyStore,
		sender:        sender,
		publicBaseURL: publicBaseURL,
	}
}

// SendInvites emails a participation link to each recipient and returns how
// many sends succeeded. Only the owner may invite. A recipient that fails is
// logged and skipped; the call errors only when every send failed.
func (s *Service) SendInvites(ctx context.Context, surveyID uuid.UUID, ownerID uuid.UUID, emails []string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "SendInvites")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if s.sender == nil || !s.sender.Available() {
		return 0, internal.ErrSMTPNotConfigured
	}

	target, err := s.surveyStore.GetByID(ctx, surveyID)
	if err != nil {
		return 0, err
	}
	if target.OwnerID != ownerID {
		return 0, internal.ErrPermissionDenied
	}

	subject := fmt.Sprintf("You're invited to take a survey: %s", target.Title)
	link := fmt.Sprintf("%s/survey/%s", strings.TrimSuffix(s.publicBaseURL, "/"), surveyID.String())
	body := fmt.Sprintf("Please click the link below to participate in the survey:\n\n%s\n\nThank you!", link)

	sent := 0
	var lastErr error
	for _, email := range emails {
		if err := s.sender.Send(email, subject, body); err != nil {
			lastErr = err
			logger.Warn("failed to send invite",
				zap.String("surveyID", surveyID.String()),
				zap.String("email", email),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	if sent == 0 && lastErr != nil {
		span.RecordError(lastErr)
		return 0, fmt.Errorf("send invites: %w", lastErr)
	}

	logger.Info("sent survey invites",
		zap.String("surveyID", surveyID.String()),
		zap.Int("sent", sent),
		zap.Int("requested", len(emails)),
	)
	return sent, nil
}
