package evaluation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"ragbench/internal/evaluation"
	"ragbench/internal/evaluation/mocks"
	"ragbench/internal/llm"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validInput() evaluation.Input {
	return evaluation.Input{
		UserQuery:     "What is the refund policy?",
		SystemPrompt:  "Answer with citations.",
		ModelResponse: "Refunds within 30 days [1].",
		Sources:       evaluation.TextSources(`<source id="1">Refunds within 30 days.</source>`),
	}
}

func TestEvaluator_Evaluate_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCompleter := mocks.NewMockChatCompleter(ctrl)
	ev := evaluation.NewEvaluator(mockCompleter, llm.Credentials{Deployment: "gpt-4o"})

	tests := []struct {
		name   string
		modify func(*evaluation.Input)
		want   []string
	}{
		{
			name:   "empty source list",
			modify: func(in *evaluation.Input) { in.Sources = evaluation.ListSources() },
			want:   []string{"sources"},
		},
		{
			name:   "blank source text",
			modify: func(in *evaluation.Input) { in.Sources = evaluation.TextSources("  \n ") },
			want:   []string{"sources"},
		},
		{
			name: "all blank",
			modify: func(in *evaluation.Input) {
				*in = evaluation.Input{UserQuery: " ", SystemPrompt: "\t"}
			},
			want: []string{"user_query", "system_prompt", "model_response", "sources"},
		},
		{
			name: "query and response",
			modify: func(in *evaluation.Input) {
				in.UserQuery = ""
				in.ModelResponse = "   "
			},
			want: []string{"user_query", "model_response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			_, err := ev.Evaluate(context.Background(), in)
			var missing *evaluation.MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("Expected MissingFieldsError, got %v", err)
			}
			if !reflect.DeepEqual(missing.Fields, tt.want) {
				t.Errorf("Fields = %v, want %v", missing.Fields, tt.want)
			}
		})
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creds := llm.Credentials{Endpoint: "https://eval.example.com", APIKey: "k", Deployment: "gpt-4o"}
	mockCompleter := mocks.NewMockChatCompleter(ctrl)
	ev := evaluation.NewEvaluator(mockCompleter, creds)

	in := validInput()
	in.Sources = evaluation.ListSources(evaluation.SourceItem{Title: "Policy Doc", Content: "Refunds within 30 days."})

	mockCompleter.EXPECT().
		Complete(gomock.Any(), creds, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ llm.Credentials, messages []llm.Message, params llm.GenerationParams) (llm.Completion, error) {
			if len(messages) != 2 {
				t.Fatalf("Expected 2 messages, got %d", len(messages))
			}
			if messages[0].Role != llm.RoleSystem || !strings.Contains(messages[0].Content, "Prompt Diagnostician") {
				t.Errorf("Unexpected system message: %q", messages[0].Content)
			}
			user := messages[1].Content
			for _, want := range []string{
				"### User Query\nWhat is the refund policy?",
				"### System Prompt\nAnswer with citations.",
				"### Model Response\nRefunds within 30 days [1].",
				"### Sources\n**Policy Doc**: Refunds within 30 days.",
			} {
				if !strings.Contains(user, want) {
					t.Errorf("User content missing %q:\n%s", want, user)
				}
			}
			if params.MaxTokens != 1000 || params.Temperature != 0 {
				t.Errorf("Unexpected params: %+v", params)
			}
			return llm.Completion{Text: "  ## 1. Overall Assessment\nGood.\n"}, nil
		})

	report, err := ev.Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.Markdown != "## 1. Overall Assessment\nGood." {
		t.Errorf("Markdown = %q", report.Markdown)
	}
	if !strings.Contains(report.HTML, "<h2>1. Overall Assessment</h2>") {
		t.Errorf("HTML = %q", report.HTML)
	}
}

func TestEvaluator_Evaluate_CompletionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCompleter := mocks.NewMockChatCompleter(ctrl)
	ev := evaluation.NewEvaluator(mockCompleter, llm.Credentials{Deployment: "gpt-4o"})

	upstream := errors.New("connection refused")
	mockCompleter.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(llm.Completion{}, upstream)

	_, err := ev.Evaluate(context.Background(), validInput())
	if !errors.Is(err, upstream) {
		t.Errorf("Expected wrapped upstream error, got %v", err)
	}
}

func TestEvaluator_EvaluateCaseFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCompleter := mocks.NewMockChatCompleter(ctrl)
	ev := evaluation.NewEvaluator(mockCompleter, llm.Credentials{Deployment: "o3"})

	if _, err := ev.EvaluateCaseFile(context.Background(), "  "); !errors.Is(err, evaluation.ErrEmptyCaseFile) {
		t.Errorf("Expected ErrEmptyCaseFile, got %v", err)
	}

	mockCompleter.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ llm.Credentials, messages []llm.Message, params llm.GenerationParams) (llm.Completion, error) {
			if !strings.HasPrefix(messages[0].Content, "# Evaluation Rubric") {
				t.Errorf("Expected rubric system prompt, got %q", messages[0].Content[:40])
			}
			if messages[1].Content != "## Query\nq" {
				t.Errorf("Expected trimmed case file, got %q", messages[1].Content)
			}
			if params.MaxTokens != 1200 {
				t.Errorf("MaxTokens = %d, want 1200", params.MaxTokens)
			}
			return llm.Completion{Text: "| a | b |\n|---|---|\n| 1 | 2 |"}, nil
		})

	report, err := ev.EvaluateCaseFile(context.Background(), "\n## Query\nq\n")
	if err != nil {
		t.Fatalf("EvaluateCaseFile() error = %v", err)
	}
	if !strings.Contains(report.HTML, "<table>") {
		t.Errorf("Expected GFM table in HTML, got %q", report.HTML)
	}
}
