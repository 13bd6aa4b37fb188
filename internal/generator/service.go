package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/survey/insight"
	"gleamform/survey-backend/internal/survey/question"
)

const chatSystemPrompt = `You are a helpful assistant that helps users create surveys.
Ask clarifying questions about their survey goals, target audience, and what information they want to collect.
Be conversational and guide them through the process.
When they seem ready or say they are done, let them know you will generate the survey questions.`

const generateSystemPrompt = `You are a survey generation assistant. The user has finished describing their survey needs.
Based on the conversation history, generate 5-8 relevant survey questions.

Return ONLY a JSON object with this structure (no markdown, no explanations):
{
  "questions": [
    {
      "text": "Question text here",
      "type": "multiple_choice",
      "required": true,
      "options": ["Option 1", "Option 2", "Option 3"]
    }
  ]
}

Question types can be: "multiple_choice", "text", "paragraph", "rating", "checkboxes", "dropdown", "yes_no"
For multiple_choice, checkboxes, and dropdown, include an "options" array.
Make questions relevant to the survey topic and vary the question types.`

const summarizeSystemPrompt = `You are an expert product analyst specializing in survey data analysis. Always respond with valid JSON.`

// donePhrases are the signals that the author has finished describing the
// survey and wants questions generated.
var donePhrases = []string{"done", "finished", "complete", "that's all", "that's it"}

// ChatResult is one turn of the authoring conversation. When Done is set the
// generator produced Questions instead of a conversational Reply.
type ChatResult struct {
	Reply     string              `json:"reply,omitempty"`
	Done      bool                `json:"done"`
	Questions []question.Question `json:"questions,omitempty"`
}

type Completer interface {
	Available() bool
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	client Completer
}

func NewService(logger *zap.Logger, client Completer) *Service {
	return &Service{
		logger: logger,
		tracer: otel.Tracer("generator/service"),
		client: client,
	}
}

// Chat advances the authoring conversation one turn. Once the author signals
// they are done, the reply turn is replaced by a generated question batch,
// normalized into canonical shape before it can enter a survey.
func (s *Service) Chat(ctx context.Context, messages []Message) (ChatResult, error) {
	ctx, span := s.tracer.Start(ctx, "Chat")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if !s.client.Available() {
		return ChatResult{}, internal.ErrGeneratorUnavailable
	}

	if authorIsDone(messages) {
		questions, err := s.generate(ctx, messages)
		if err != nil {
			span.RecordError(err)
			return ChatResult{}, err
		}
		logger.Info("generated survey questions", zap.Int("count", len(questions)))
		return ChatResult{Done: true, Questions: questions}, nil
	}

	reply, err := s.client.Complete(ctx, append([]Message{
		{Role: RoleSystem, Content: chatSystemPrompt},
	}, messages...))
	if err != nil {
		span.RecordError(err)
		return ChatResult{}, err
	}

	return ChatResult{Reply: reply}, nil
}

func (s *Service) generate(ctx context.Context, messages []Message) ([]question.Question, error) {
	content, err := s.client.Complete(ctx, append([]Message{
		{Role: RoleSystem, Content: generateSystemPrompt},
	}, messages...))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrGeneratorBadOutput, err)
	}

	questions := make([]question.Question, 0, len(payload.Questions))
	for _, raw := range payload.Questions {
		q, err := question.DecodeGenerated(raw)
		if err != nil {
			// One malformed entry does not spoil the batch.
			s.logger.Warn("skipping malformed generated question", zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}

	questions = question.NormalizeAll(questions)
	if len(questions) == 0 {
		return nil, internal.ErrGeneratorBadOutput
	}
	return questions, nil
}

// Summarize implements the insight summarizer boundary over the same gateway.
func (s *Service) Summarize(ctx context.Context, title string, stats []insight.QuestionStat) (insight.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "Summarize")
	defer span.End()

	if !s.client.Available() {
		return insight.Summary{}, internal.ErrGeneratorUnavailable
	}

	encodedStats, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return insight.Summary{}, err
	}

	prompt := fmt.Sprintf(`Analyze the following survey results and provide actionable insights.

Survey Title: %s

Question Analysis:
%s

Please provide:
1. Overall sentiment analysis (positive/neutral/negative percentage)
2. Top 3-5 key insights from the data
3. Top 3-5 improvement suggestions based on the feedback
4. Most mentioned keywords or themes (if applicable)
5. A brief executive summary (2-3 sentences)

Format your response as JSON with this structure:
{
  "sentiment": {"positive": 0, "neutral": 0, "negative": 0},
  "keyInsights": ["insight 1"],
  "improvementSuggestions": ["suggestion 1"],
  "keywords": ["keyword1"],
  "executiveSummary": "summary text"
}`, title, encodedStats)

	content, err := s.client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: summarizeSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		span.RecordError(err)
		return insight.Summary{}, err
	}

	var summary insight.Summary
	if err := json.Unmarshal([]byte(extractJSON(content)), &summary); err != nil {
		return insight.Summary{}, fmt.Errorf("%w: %v", internal.ErrGeneratorBadOutput, err)
	}
	return summary, nil
}

func authorIsDone(messages []Message) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleUser {
			continue
		}
		last := strings.ToLower(messages[i].Content)
		for _, phrase := range donePhrases {
			if strings.Contains(last, phrase) {
				return true
			}
		}
		return false
	}
	return false
}
