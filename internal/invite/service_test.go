package invite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey"
)

type mockSurveyStore struct {
	mock.Mock
}

func (m *mockSurveyStore) GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(survey.Survey)
	return row, args.Error(1)
}

type fakeSender struct {
	available bool
	failFor   map[string]error

	sent     []string
	subjects []string
	bodies   []string
}

func (f *fakeSender) Available() bool {
	return f.available
}

func (f *fakeSender) Send(to string, subject string, textBody string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, textBody)
	return nil
}

func newTestService(surveyStore SurveyStore, sender Sender) *Service {
	return &Service{
		logger:        zap.NewNop(),
		tracer:        noop.NewTracerProvider().Tracer("test"),
		surveyStore:   surveyStore,
		sender:        sender,
		publicBaseURL: "https://forms.example.com/",
	}
}

func TestService_SendInvites(t *testing.T) {
	surveyID := uuid.New()
	ownerID := uuid.New()
	target := survey.Survey{ID: surveyID, OwnerID: ownerID, Title: "Team Tooling"}

	t.Run("sends a link to every recipient", func(t *testing.T) {
		surveyStore := new(mockSurveyStore)
		surveyStore.On("GetByID", mock.Anything, surveyID).Return(target, nil)
		sender := &fakeSender{available: true}

		service := newTestService(surveyStore, sender)

		sent, err := service.SendInvites(context.Background(), surveyID, ownerID, []string{"a@example.com", "b@example.com"})
		require.NoError(t, err)
		require.Equal(t, 2, sent)
		require.Equal(t, []string{"a@example.com", "b@example.com"}, sender.sent)
		require.Equal(t, "You're invited to take a survey: Team Tooling", sender.subjects[0])
		require.Contains(t, sender.bodies[0], "https://forms.example.com/survey/"+surveyID.String())
	})

	t.Run("a failing recipient is skipped, not fatal", func(t *testing.T) {
		surveyStore := new(mockSurveyStore)
		surveyStore.On("GetByID", mock.Anything, surveyID).Return(target, nil)
		sender := &fakeSender{
			available: true,
			failFor:   map[string]error{"bounce@example.com": errors.New("mailbox unavailable")},
		}

		service := newTestService(surveyStore, sender)

		sent, err := service.SendInvites(context.Background(), surveyID, ownerID, []string{"bounce@example.com", "ok@example.com"})
		require.NoError(t, err)
		require.Equal(t, 1, sent)
		require.Equal(t, []string{"ok@example.com"}, sender.sent)
	})

	t.Run("errors when every send failed", func(t *testing.T) {
		surveyStore := new(mockSurveyStore)
		surveyStore.On("GetByID", mock.Anything, surveyID).Return(target, nil)
		sender := &fakeSender{
			available: true,
			failFor:   map[string]error{"bounce@example.com": errors.New("mailbox unavailable")},
		}

		service := newTestService(surveyStore, sender)

		_, err := service.SendInvites(context.Background(), surveyID, ownerID, []string{"bounce@example.com"})
		require.Error(t, err)
	})

	t.Run("requires a configured mailer", func(t *testing.T) {
		service := newTestService(new(mockSurveyStore), &fakeSender{available: false})

		_, err := service.SendInvites(context.Background(), surveyID, ownerID, []string{"a@example.com"})
		require.ErrorIs(t, err, internal.ErrSMTPNotConfigured)
	})

	t.Run("rejects a non-owner", func(t *testing.T) {
		surveyStore := new(mockSurveyStore)
		surveyStore.On("GetByID", mock.Anything, surveyID).Return(target, nil)

		service := newTestService(surveyStore, &fakeSender{available: true})

		_, err := service.SendInvites(context.Background(), surveyID, uuid.New(), []string{"a@example.com"})
		require.ErrorIs(t, err, internal.ErrPermissionDenied)
	})
}
