package service

import (
	"context"
	"errors"
	"exam_prep_backend/internal/util"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const validQuestionArray = `[{"id":"q1","type":"single","question":"Which statement is correct?","options":[{"id":"A","text":"a"},{"id":"B","text":"b"},{"id":"C","text":"c"},{"id":"D","text":"d"}],"answer":["A"],"hint":"h","analysis":"x"}]`

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestAIService(gens ...ContentGenerator) *AIService {
	return &AIService{
		generators:     gens,
		maxQuestions:   50,
		attemptTimeout: time.Second,
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fences smart quotes trailing comma",
			input: "```json\n[{“a”: 1,}]\n```",
			want:  `[{"a": 1}]`,
		},
		{
			name:  "already clean",
			input: `[{"a": 1}]`,
			want:  `[{"a": 1}]`,
		},
		{
			name:  "control characters stripped",
			input: "[{\"a\":\x01\x02 1}]",
			want:  `[{"a": 1}]`,
		},
		{
			name:  "trailing comma before brace",
			input: `{"a": 1,}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "unmatched fence marker",
			input: "```json[1, 2]",
			want:  "[1, 2]",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "   [1]   ",
			want:  "[1]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RepairJSON(tc.input)
			if got != tc.want {
				t.Errorf("RepairJSON(%q) = %q, want %q", tc.input, got, tc.want)
			}
			// 幂等：清洗已干净文本不应产生新的变化
			if again := RepairJSON(got); again != got {
				t.Errorf("RepairJSON not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "api error 429", err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"}, want: true},
		{name: "message contains 429", err: errors.New("upstream returned 429"), want: true},
		{name: "message contains Quota", err: errors.New("Quota exceeded for project"), want: true},
		{name: "message contains Too Many Requests", err: errors.New("Too Many Requests"), want: true},
		{name: "api error 400", err: &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "bad prompt"}, want: false},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsQuotaError(tc.err); got != tc.want {
				t.Errorf("IsQuotaError(%v) = %t, want %t", tc.err, got, tc.want)
			}
		})
	}
}

func TestGenerateQuestionsRequestValidation(t *testing.T) {
	gen := &fakeGenerator{response: validQuestionArray}
	svc := newTestAIService(gen)

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{})
	if !errors.Is(err, util.ErrInvalidGenerateRequest) {
		t.Errorf("zero questions: expected ErrInvalidGenerateRequest, got %v", err)
	}

	_, err = svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 51})
	if !errors.Is(err, util.ErrInvalidGenerateRequest) {
		t.Errorf("over ceiling: expected ErrInvalidGenerateRequest, got %v", err)
	}

	if gen.calls != 0 {
		t.Errorf("generator called %d times during validation failures, want 0", gen.calls)
	}
}

func TestGenerateQuestionsEmptyPool(t *testing.T) {
	svc := newTestAIService()

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 5})
	if !errors.Is(err, util.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestGenerateQuestionsQuotaFailover(t *testing.T) {
	first := &fakeGenerator{err: errors.New("Quota exceeded for project")}
	second := &fakeGenerator{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "Too Many Requests"}}
	third := &fakeGenerator{response: validQuestionArray}
	svc := newTestAIService(first, second, third)

	questions, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q1" {
		t.Errorf("questions = %+v, want the third credential's parsed output", questions)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", first.calls, second.calls, third.calls)
	}
}

func TestGenerateQuestionsNonQuotaErrorAborts(t *testing.T) {
	first := &fakeGenerator{err: errors.New("prompt was rejected")}
	second := &fakeGenerator{response: validQuestionArray}
	svc := newTestAIService(first, second)

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if err == nil || err.Error() != "prompt was rejected" {
		t.Errorf("expected the original error, got %v", err)
	}
	if second.calls != 0 {
		t.Errorf("second credential invoked %d times after fatal error, want 0", second.calls)
	}
}

func TestGenerateQuestionsAllCredentialsExhausted(t *testing.T) {
	first := &fakeGenerator{err: errors.New("429 rate limit")}
	second := &fakeGenerator{err: errors.New("Quota exhausted")}
	svc := newTestAIService(first, second)

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if !errors.Is(err, util.ErrAllCredentialsExhausted) {
		t.Fatalf("expected ErrAllCredentialsExhausted, got %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestGenerateQuestionsNonArrayResponse(t *testing.T) {
	gen := &fakeGenerator{response: `{"message": "here are your questions"}`}
	svc := newTestAIService(gen)

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if !errors.Is(err, util.ErrAIResponseInvalid) {
		t.Errorf("expected ErrAIResponseInvalid, got %v", err)
	}
}

func TestGenerateQuestionsRepairedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + validQuestionArray + "\n```"}
	svc := newTestAIService(gen)

	questions, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("len(questions) = %d, want 1", len(questions))
	}
}

func TestGenerateQuestionsFiltersInvalidEntries(t *testing.T) {
	mixed := `[
		{"id":"q1","type":"single","question":"ok","options":[{"id":"A","text":"a"},{"id":"B","text":"b"}],"answer":["A"]},
		{"id":"q2","type":"single","question":"answer not in options","options":[{"id":"A","text":"a"}],"answer":["Z"]},
		{"id":"q3","type":"matching","question":"missing lists","options":[{"id":"A","text":"a"}],"answer":["A"]},
		{"id":"","type":"single","question":"missing id","options":[{"id":"A","text":"a"}],"answer":["A"]}
	]`
	gen := &fakeGenerator{response: mixed}
	svc := newTestAIService(gen)

	questions, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q1" {
		t.Errorf("questions = %+v, want only q1 to survive validation", questions)
	}
}

func TestGenerateQuestionsAllEntriesInvalid(t *testing.T) {
	gen := &fakeGenerator{response: `[{"id":"q1","type":"essay","question":"x","options":[{"id":"A","text":"a"}],"answer":["A"]}]`}
	svc := newTestAIService(gen)

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{SingleCount: 1})
	if !errors.Is(err, util.ErrAIResponseInvalid) {
		t.Errorf("expected ErrAIResponseInvalid, got %v", err)
	}
}

func TestBuildGenerationPromptDifficultyRelabel(t *testing.T) {
	req := GenerateRequest{SingleCount: 2, Difficulty: "hard", Subjects: "History"}
	prompt := buildGenerationPrompt(req, 2)
	if !strings.Contains(prompt, "Expert / Hard") {
		t.Errorf("prompt should relabel hard difficulty, got: %q", prompt[:120])
	}

	req.Difficulty = "Medium"
	prompt = buildGenerationPrompt(req, 2)
	if strings.Contains(prompt, "Expert / Hard") {
		t.Error("medium difficulty should not be relabeled")
	}
}
