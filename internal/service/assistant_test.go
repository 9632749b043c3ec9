package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"ragbench/internal/config"
	"ragbench/internal/evaluation"
	"ragbench/internal/rag"
	"ragbench/internal/service"
	"ragbench/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func ptr[T any](v T) *T { return &v }

func TestAssistant_Query(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	settings := rag.Settings{Model: "chat", SystemPrompt: "be brief", SystemPromptMode: rag.PromptModeAppend}
	svc := service.NewAssistant(service.Options{Engine: mockEngine, Settings: settings})

	tests := []struct {
		name         string
		req          service.QueryRequest
		mockSetup    func()
		wantErr      bool
		wantAnswer   string
		checkErrType func(error) bool
	}{
		{
			name: "successful query",
			req:  service.QueryRequest{Query: "refund window?"},
			mockSetup: func() {
				mockEngine.EXPECT().
					Ask(gomock.Any(), rag.QueryRequest{Query: "refund window?", Settings: settings}).
					Return(rag.QueryResponse{Answer: "30 days [1]."}, nil)
			},
			wantAnswer: "30 days [1].",
		},
		{
			name:      "empty query",
			req:       service.QueryRequest{Query: "   "},
			mockSetup: func() {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "query" && errors.Is(err, service.ErrInvalidInput)
			},
		},
		{
			name: "engine failure",
			req:  service.QueryRequest{Query: "refund window?"},
			mockSetup: func() {
				mockEngine.EXPECT().
					Ask(gomock.Any(), gomock.Any()).
					Return(rag.QueryResponse{}, errors.New("completion failed"))
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				return errors.Is(err, service.ErrExternalService)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			resp, err := svc.Query(testContext(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Query() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("Query() error type check failed: %v", err)
				}
				return
			}
			if resp.Answer != tt.wantAnswer {
				t.Errorf("Query() answer = %q, want %q", resp.Answer, tt.wantAnswer)
			}
		})
	}
}

func TestAssistant_Query_Overrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	svc := service.NewAssistant(service.Options{
		Engine:   mockEngine,
		Settings: rag.Settings{Model: "chat", SystemPrompt: "be brief", SystemPromptMode: rag.PromptModeAppend},
	})

	mockEngine.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req rag.QueryRequest) (rag.QueryResponse, error) {
			if req.Settings.SystemPrompt != "answer in French" {
				t.Errorf("SystemPrompt = %q, want override", req.Settings.SystemPrompt)
			}
			if req.Settings.SystemPromptMode != rag.PromptModeOverride {
				t.Errorf("SystemPromptMode = %q, want %q", req.Settings.SystemPromptMode, rag.PromptModeOverride)
			}
			if req.Overrides.Model != "o3" {
				t.Errorf("Overrides.Model = %q, want o3", req.Overrides.Model)
			}
			if req.Overrides.Temperature == nil || *req.Overrides.Temperature != 0.9 {
				t.Errorf("Overrides.Temperature = %v, want 0.9", req.Overrides.Temperature)
			}
			if req.AppendedPrompt != "cite everything" {
				t.Errorf("AppendedPrompt = %q", req.AppendedPrompt)
			}
			return rag.QueryResponse{Answer: "ok"}, nil
		})

	_, err := svc.Query(testContext(), service.QueryRequest{
		Query:          "q",
		Model:          "o3",
		Temperature:    ptr(float32(0.9)),
		SystemPrompt:   "answer in French",
		AppendedPrompt: "cite everything",
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
}

func TestAssistant_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewAssistant(service.Options{
		Engine:    mocks.NewMockEngine(ctrl),
		Evaluator: mocks.NewMockEvaluator(ctrl),
		Missing:   []string{"AZURE_OPENAI_KEY"},
	})
	ctx := testContext()

	if _, err := svc.Query(ctx, service.QueryRequest{Query: "q"}); !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("Query() error = %v, want ErrUnavailable", err)
	}
	if _, _, err := svc.Stream(ctx, service.QueryRequest{Query: "q"}); !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("Stream() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Evaluate(ctx, evaluation.Input{}); !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("Evaluate() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.ReAsk(ctx, service.ReAskRequest{Query: "q", Params: service.BatchParams{Runs: 1}}); !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("ReAsk() error = %v, want ErrUnavailable", err)
	}

	health := svc.Health(ctx)
	if health.Assistant != "unavailable" {
		t.Errorf("Health().Assistant = %q, want unavailable", health.Assistant)
	}
	if len(health.Missing) != 1 || health.Missing[0] != "AZURE_OPENAI_KEY" {
		t.Errorf("Health().Missing = %v", health.Missing)
	}
}

func TestAssistant_RetrievalUnconfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := config.Config{
		OpenAIEndpoint:      "https://example.openai.azure.com",
		OpenAIKey:           "key",
		ChatDeployment:      "chat",
		EmbeddingDeployment: "embed",
		SearchBackend:       config.SearchBackendAzure,
		SearchEndpoint:      "https://example.search.windows.net",
		SearchIndex:         "docs",
	}

	mockEngine := mocks.NewMockEngine(ctrl)
	mockEngine.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		Return(rag.QueryResponse{Answer: "From general knowledge."}, nil)

	svc := service.NewAssistant(service.Options{
		Engine:           mockEngine,
		Pinger:           stubPinger{err: errors.New("should not be pinged")},
		Missing:          cfg.Missing(),
		RetrievalMissing: cfg.RetrievalMissing(),
	})
	ctx := testContext()

	resp, err := svc.Query(ctx, service.QueryRequest{Query: "refund window?"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Answer != "From general knowledge." {
		t.Errorf("Query().Answer = %q", resp.Answer)
	}

	health := svc.Health(ctx)
	if health.Assistant != "available" || health.Search != "unconfigured" {
		t.Errorf("Health() = %+v", health)
	}
	if len(health.RetrievalMissing) != 1 || health.RetrievalMissing[0] != "SEARCH_KEY" {
		t.Errorf("Health().RetrievalMissing = %v", health.RetrievalMissing)
	}
}

func TestAssistant_Stream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	svc := service.NewAssistant(service.Options{Engine: mockEngine})

	fragments := make(chan string, 2)
	results := make(chan rag.StreamResult, 1)
	fragments <- "Hello "
	fragments <- "[1]"
	close(fragments)
	results <- rag.StreamResult{Answer: "Hello [1]"}
	close(results)

	mockEngine.EXPECT().
		Stream(gomock.Any(), gomock.Any()).
		Return((<-chan string)(fragments), (<-chan rag.StreamResult)(results))

	out, res, err := svc.Stream(testContext(), service.QueryRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var got strings.Builder
	for f := range out {
		got.WriteString(f)
	}
	if got.String() != "Hello [1]" {
		t.Errorf("fragments = %q", got.String())
	}
	final := <-res
	if final.Answer != "Hello [1]" {
		t.Errorf("result answer = %q", final.Answer)
	}
}

func TestAssistant_ReAsk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	svc := service.NewAssistant(service.Options{Engine: mockEngine})

	t.Run("records per-run errors", func(t *testing.T) {
		gomock.InOrder(
			mockEngine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.QueryResponse{Answer: "first"}, nil),
			mockEngine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.QueryResponse{}, errors.New("rate limited")),
			mockEngine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.QueryResponse{Answer: "third"}, nil),
		)

		resp, err := svc.ReAsk(testContext(), service.ReAskRequest{
			Query:  "q",
			Params: service.BatchParams{Model: "gpt-4o", Runs: 3},
		})
		if err != nil {
			t.Fatalf("ReAsk() error = %v", err)
		}
		if len(resp.Results) != 3 {
			t.Fatalf("len(Results) = %d, want 3", len(resp.Results))
		}
		for i, r := range resp.Results {
			if r.Run != i+1 {
				t.Errorf("Results[%d].Run = %d", i, r.Run)
			}
		}
		if resp.Results[0].Answer != "first" || resp.Results[2].Answer != "third" {
			t.Errorf("unexpected answers: %+v", resp.Results)
		}
		if resp.Results[1].Error != "rate limited" || resp.Results[1].Answer != "" {
			t.Errorf("Results[1] = %+v, want error only", resp.Results[1])
		}
		if resp.Parameters.Model != "gpt-4o" {
			t.Errorf("Parameters.Model = %q", resp.Parameters.Model)
		}
	})

	t.Run("cancelled context skips remaining runs", func(t *testing.T) {
		ctx, cancel := context.WithCancel(testContext())
		defer cancel()
		mockEngine.EXPECT().
			Ask(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, rag.QueryRequest) (rag.QueryResponse, error) {
				cancel()
				return rag.QueryResponse{Answer: "first"}, nil
			})

		resp, err := svc.ReAsk(ctx, service.ReAskRequest{Query: "q", Params: service.BatchParams{Runs: 3}})
		if err != nil {
			t.Fatalf("ReAsk() error = %v", err)
		}
		if len(resp.Results) != 3 || resp.Results[0].Answer != "first" {
			t.Fatalf("Results = %+v", resp.Results)
		}
		for _, r := range resp.Results[1:] {
			if r.Error != "run skipped: context canceled" {
				t.Errorf("Results[%d].Error = %q", r.Run-1, r.Error)
			}
		}
	})

	for _, runs := range []int{0, service.MaxRuns + 1} {
		t.Run("rejects out of range runs", func(t *testing.T) {
			_, err := svc.ReAsk(testContext(), service.ReAskRequest{Query: "q", Params: service.BatchParams{Runs: runs}})
			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != "n_runs" {
				t.Errorf("ReAsk(runs=%d) error = %v, want n_runs validation error", runs, err)
			}
		})
	}
}

func TestAssistant_Compare(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	svc := service.NewAssistant(service.Options{Engine: mockEngine})

	mockEngine.EXPECT().
		Ask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req rag.QueryRequest) (rag.QueryResponse, error) {
			return rag.QueryResponse{Answer: "model " + req.Overrides.Model}, nil
		}).
		Times(3)

	resp, err := svc.Compare(testContext(), service.CompareRequest{
		Query:  "q",
		Batch1: service.BatchParams{Model: "o3", Runs: 1},
		Batch2: service.BatchParams{Model: "gpt-4o", Runs: 2},
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(resp.Batch1.Results) != 1 || resp.Batch1.Results[0].Answer != "model o3" {
		t.Errorf("Batch1 = %+v", resp.Batch1)
	}
	if len(resp.Batch2.Results) != 2 || resp.Batch2.Results[1].Answer != "model gpt-4o" {
		t.Errorf("Batch2 = %+v", resp.Batch2)
	}

	_, err = svc.Compare(testContext(), service.CompareRequest{
		Query:  "q",
		Batch1: service.BatchParams{Runs: 1},
		Batch2: service.BatchParams{Runs: 0},
	})
	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "n_runs2" {
		t.Errorf("Compare() error = %v, want n_runs2 validation error", err)
	}
}

func TestAssistant_Evaluate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEvaluator := mocks.NewMockEvaluator(ctrl)
	svc := service.NewAssistant(service.Options{Engine: mocks.NewMockEngine(ctrl), Evaluator: mockEvaluator})

	tests := []struct {
		name         string
		mockSetup    func()
		wantErr      bool
		checkErrType func(error) bool
	}{
		{
			name: "report returned",
			mockSetup: func() {
				mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
					Return(evaluation.Report{Markdown: "## Verdict"}, nil)
			},
		},
		{
			name: "missing fields pass through",
			mockSetup: func() {
				mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
					Return(evaluation.Report{}, &evaluation.MissingFieldsError{Fields: []string{"sources"}})
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				var missing *evaluation.MissingFieldsError
				return errors.As(err, &missing) && !errors.Is(err, service.ErrExternalService)
			},
		},
		{
			name: "completion failure",
			mockSetup: func() {
				mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
					Return(evaluation.Report{}, errors.New("timeout"))
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				return errors.Is(err, service.ErrExternalService)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			report, err := svc.Evaluate(testContext(), evaluation.Input{UserQuery: "q"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !tt.checkErrType(err) {
					t.Errorf("Evaluate() error type check failed: %v", err)
				}
				return
			}
			if report.Markdown != "## Verdict" {
				t.Errorf("Evaluate() report = %q", report.Markdown)
			}
		})
	}
}

func TestAssistant_EvaluateCaseFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEvaluator := mocks.NewMockEvaluator(ctrl)
	svc := service.NewAssistant(service.Options{Engine: mocks.NewMockEngine(ctrl), Evaluator: mockEvaluator})

	mockEvaluator.EXPECT().
		EvaluateCaseFile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, caseFile string) (evaluation.Report, error) {
			if !strings.Contains(caseFile, "## Query\nrefund window?") {
				t.Errorf("case file missing query section:\n%s", caseFile)
			}
			if !strings.Contains(caseFile, "## System Prompt\n"+strings.TrimSpace(rag.DefaultSystemPrompt)[:20]) {
				t.Errorf("case file missing default system prompt:\n%s", caseFile)
			}
			return evaluation.Report{Markdown: "graded"}, nil
		})

	got, err := svc.EvaluateCaseFile(testContext(), evaluation.CaseFile{Query: "refund window?", Response: "30 days [1]."})
	if err != nil {
		t.Fatalf("EvaluateCaseFile() error = %v", err)
	}
	if got.Report.Markdown != "graded" {
		t.Errorf("Report = %q", got.Report.Markdown)
	}
	if !strings.Contains(got.CaseFile, "## Response\n30 days [1].") {
		t.Errorf("CaseFile = %q", got.CaseFile)
	}

	_, err = svc.EvaluateCaseFile(testContext(), evaluation.CaseFile{})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("EvaluateCaseFile(empty) error = %v, want ErrInvalidInput", err)
	}
}

func TestAssistant_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		pinger     stubPinger
		wantSearch string
	}{
		{name: "search reachable", pinger: stubPinger{}, wantSearch: "ok"},
		{name: "search unreachable", pinger: stubPinger{err: errors.New("dial tcp")}, wantSearch: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewAssistant(service.Options{Engine: mocks.NewMockEngine(ctrl), Pinger: tt.pinger})
			got := svc.Health(testContext())
			if got.Status != "healthy" || got.Assistant != "available" {
				t.Errorf("Health() = %+v", got)
			}
			if got.Search != tt.wantSearch {
				t.Errorf("Health().Search = %q, want %q", got.Search, tt.wantSearch)
			}
			if got.Timestamp.IsZero() {
				t.Error("Health().Timestamp is zero")
			}
		})
	}
}

func TestAssistant_SystemPrompt(t *testing.T) {
	svc := service.NewAssistant(service.Options{})
	if svc.SystemPrompt() != rag.DefaultSystemPrompt {
		t.Error("SystemPrompt() should return the built-in default")
	}
}
