package evaluation

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_completer.go -package=mocks ragbench/internal/evaluation ChatCompleter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ragbench/internal/contextutil"
	"ragbench/internal/llm"
)

const (
	diagnosticMaxTokens = 1000
	caseFileMaxTokens   = 1200
)

const diagnosticianPrompt = "You are a Lead AI System Architect specializing in prompt engineering " +
	"and RAG system diagnostics. Evaluate the effectiveness and robustness " +
	"of the System Prompt based on the provided inputs. " +
	"Return a markdown-formatted diagnostic report with sections: " +
	"1. Overall Assessment, 2. Detailed Analysis, 3. Actionable Recommendations. " +
	"Strictly follow the Prompt Diagnostician's Mandate."

// ErrEmptyCaseFile is returned when a case file has no content.
var ErrEmptyCaseFile = errors.New("case file is empty")

// ChatCompleter sends a blocking chat completion.
type ChatCompleter interface {
	Complete(ctx context.Context, creds llm.Credentials, messages []llm.Message, params llm.GenerationParams) (llm.Completion, error)
}

// Report is a diagnostic report in markdown and rendered HTML.
type Report struct {
	Markdown string `json:"report"`
	HTML     string `json:"html"`
}

// Evaluator runs the diagnostician model over finished interactions.
type Evaluator struct {
	completer ChatCompleter
	creds     llm.Credentials
	markdown  goldmark.Markdown
}

// NewEvaluator creates an evaluator that sends its requests with creds.
func NewEvaluator(completer ChatCompleter, creds llm.Credentials) *Evaluator {
	return &Evaluator{
		completer: completer,
		creds:     creds,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Deployment returns the deployment the evaluator addresses.
func (e *Evaluator) Deployment() string {
	return e.creds.Deployment
}

// Evaluate validates the four inputs and asks the diagnostician for a report.
// Blank inputs yield a *MissingFieldsError without a remote call.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := in.Validate(); err != nil {
		logger.WarnContext(ctx, "evaluation input rejected", "error", err)
		return Report{}, err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: diagnosticianPrompt},
		{Role: llm.RoleUser, Content: diagnosticUserContent(in)},
	}

	logger.InfoContext(ctx, "running diagnostic evaluation", "deployment", e.creds.Deployment)
	return e.run(ctx, messages, diagnosticMaxTokens)
}

// EvaluateCaseFile grades a markdown case file against the evaluation rubric.
func (e *Evaluator) EvaluateCaseFile(ctx context.Context, caseFile string) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	caseFile = strings.TrimSpace(caseFile)
	if caseFile == "" {
		return Report{}, ErrEmptyCaseFile
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: strings.TrimSpace(rubricPrompt)},
		{Role: llm.RoleUser, Content: caseFile},
	}

	logger.InfoContext(ctx, "running case file evaluation", "deployment", e.creds.Deployment, "case_file_length", len(caseFile))
	return e.run(ctx, messages, caseFileMaxTokens)
}

// Render converts a markdown report to HTML.
func (e *Evaluator) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func (e *Evaluator) run(ctx context.Context, messages []llm.Message, maxTokens int) (Report, error) {
	completion, err := e.completer.Complete(ctx, e.creds, messages, llm.GenerationParams{
		Model:       e.creds.Deployment,
		Temperature: 0,
		TopP:        1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return Report{}, fmt.Errorf("evaluation request failed: %w", err)
	}

	report := Report{Markdown: strings.TrimSpace(completion.Text)}
	html, err := e.Render(report.Markdown)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render evaluation report", "error", err)
		return report, nil
	}
	report.HTML = html
	return report, nil
}

func diagnosticUserContent(in Input) string {
	var b strings.Builder
	b.WriteString("### User Query\n")
	b.WriteString(strings.TrimSpace(in.UserQuery))
	b.WriteString("\n\n### System Prompt\n")
	b.WriteString(strings.TrimSpace(in.SystemPrompt))
	b.WriteString("\n\n### Model Response\n")
	b.WriteString(strings.TrimSpace(in.ModelResponse))
	b.WriteString("\n\n### Sources\n")
	b.WriteString(in.Sources.Render())
	return b.String()
}
