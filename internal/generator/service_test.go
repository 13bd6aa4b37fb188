package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey/insight"
	"gleamform/survey-backend/internal/survey/question"
)

type fakeCompleter struct {
	available bool
	content   string
	err       error

	gotMessages []Message
}

func (f *fakeCompleter) Available() bool {
	return f.available
}

func (f *fakeCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	f.gotMessages = messages
	return f.content, f.err
}

func newTestService(client Completer) *Service {
	return &Service{
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("test"),
		client: client,
	}
}

func TestService_Chat_ConversationTurn(t *testing.T) {
	client := &fakeCompleter{available: true, content: "What is your target audience?"}
	service := newTestService(client)

	result, err := service.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "I want a survey about my coffee shop"},
	})
	require.NoError(t, err)
	require.False(t, result.Done)
	require.Equal(t, "What is your target audience?", result.Reply)
	require.Empty(t, result.Questions)

	require.Equal(t, RoleSystem, client.gotMessages[0].Role)
}

func TestService_Chat_GeneratesWhenDone(t *testing.T) {
	client := &fakeCompleter{available: true, content: "```json\n" + `{
		"questions": [
			{"text": "How often do you visit?", "type": "multiple_choice", "options": ["Daily", "Weekly"]},
			{"text": "Any other feedback?", "type": "paragraph", "required": false},
			{"text": "Mystery", "type": "hologram"}
		]
	}` + "\n```"}
	service := newTestService(client)

	result, err := service.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "I want a survey about my coffee shop"},
		{Role: RoleAssistant, Content: "Anything else?"},
		{Role: RoleUser, Content: "That's all, thanks!"},
	})
	require.NoError(t, err)
	require.True(t, result.Done)
	require.Empty(t, result.Reply)
	require.Len(t, result.Questions, 3)

	first := result.Questions[0]
	require.Equal(t, question.TypeMultipleChoice, first.Type)
	require.NotEmpty(t, first.ID)
	require.True(t, first.Required, "missing required must default to true")

	second := result.Questions[1]
	require.False(t, second.Required)

	third := result.Questions[2]
	require.Equal(t, question.TypeText, third.Type, "unknown type must degrade to text")
}

func TestService_Chat_Unavailable(t *testing.T) {
	service := newTestService(&fakeCompleter{available: false})

	_, err := service.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.ErrorIs(t, err, internal.ErrGeneratorUnavailable)
}

func TestService_Chat_BadGeneratedJSON(t *testing.T) {
	client := &fakeCompleter{available: true, content: "Sure, here are your questions!"}
	service := newTestService(client)

	_, err := service.Chat(context.Background(), []Message{{Role: RoleUser, Content: "done"}})
	require.ErrorIs(t, err, internal.ErrGeneratorBadOutput)
}

func TestService_Chat_CompleterError(t *testing.T) {
	client := &fakeCompleter{available: true, err: errors.New("gateway timeout")}
	service := newTestService(client)

	_, err := service.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.Error(t, err)
}

func TestService_Summarize(t *testing.T) {
	client := &fakeCompleter{available: true, content: `{
		"sentiment": {"positive": 70, "neutral": 20, "negative": 10},
		"keyInsights": ["Customers love the espresso"],
		"improvementSuggestions": ["Open earlier on weekends"],
		"keywords": ["espresso", "weekend"],
		"executiveSummary": "Feedback is largely positive."
	}`}
	service := newTestService(client)

	summary, err := service.Summarize(context.Background(), "Coffee Shop Survey", []insight.QuestionStat{
		{QuestionID: "q1", QuestionText: "Recommend us?", Type: question.TypeYesNo},
	})
	require.NoError(t, err)
	require.Equal(t, 70, summary.Sentiment.Positive)
	require.Equal(t, []string{"Customers love the espresso"}, summary.KeyInsights)
	require.Equal(t, "Feedback is largely positive.", summary.ExecutiveSummary)
}

func TestAuthorIsDone(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     bool
	}{
		{
			name:     "plain done",
			messages: []Message{{Role: RoleUser, Content: "Done"}},
			want:     true,
		},
		{
			name:     "done inside a sentence",
			messages: []Message{{Role: RoleUser, Content: "I think that's it for now"}},
			want:     true,
		},
		{
			name: "assistant saying done does not count",
			messages: []Message{
				{Role: RoleUser, Content: "more questions please"},
				{Role: RoleAssistant, Content: "done, here they are"},
			},
			want: false,
		},
		{
			name:     "still describing",
			messages: []Message{{Role: RoleUser, Content: "add a rating question too"}},
			want:     false,
		},
		{
			name:     "no user turns",
			messages: []Message{{Role: RoleAssistant, Content: "how can I help?"}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, authorIsDone(tt.messages))
		})
	}
}
