package service

import (
	"context"
	"encoding/json"
	"errors"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ContentGenerator 外部生成模型的单凭据客户端。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type openAIGenerator struct {
	client *openai.Client
	model  string
}

func newOpenAIGenerator(apiKey, baseURL, model string) *openAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *openAIGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert exam setter. Output must be ONLY a JSON array, no markdown.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AIService 驱动题目自动生成。凭据池在构造时注入且有序，
// 失败轮换严格串行：同一逻辑请求绝不并发打多个凭据的配额。
type AIService struct {
	generators     []ContentGenerator
	attemptTimeout time.Duration

	mu           sync.RWMutex
	maxQuestions int
}

func NewAIService(cfg config.AIConfig) *AIService {
	pool := cfg.CredentialPool()
	generators := make([]ContentGenerator, 0, len(pool))
	for _, key := range pool {
		generators = append(generators, newOpenAIGenerator(key, cfg.BaseURL, cfg.Model))
	}
	return &AIService{
		generators:     generators,
		maxQuestions:   cfg.MaxQuestions,
		attemptTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// SetMaxQuestions 配置热更新回调使用。凭据池与模型名不热更，改动需重启。
func (s *AIService) SetMaxQuestions(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.maxQuestions = n
	s.mu.Unlock()
}

func (s *AIService) getMaxQuestions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxQuestions
}

type GenerateRequest struct {
	SingleCount   int    `json:"singleCount"`
	MultiCount    int    `json:"multiCount"`
	MatchingCount int    `json:"matchingCount"`
	Difficulty    string `json:"difficulty"`
	Subjects      string `json:"subjects"`
	Remarks       string `json:"remarks"`
}

// GenerateQuestions 按凭据顺序尝试生成。配额类错误轮换到下一个凭据，
// 其他错误立即失败：换凭据解决不了请求本身的问题。
func (s *AIService) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.Question, error) {
	total := req.SingleCount + req.MultiCount + req.MatchingCount
	if total <= 0 {
		return nil, fmt.Errorf("%w: at least one question must be requested", util.ErrInvalidGenerateRequest)
	}
	if max := s.getMaxQuestions(); total > max {
		return nil, fmt.Errorf("%w: cannot generate more than %d questions at a time", util.ErrInvalidGenerateRequest, max)
	}
	if len(s.generators) == 0 {
		return nil, util.ErrNoCredentials
	}

	prompt := buildGenerationPrompt(req, total)

	var lastErr error
	for i, gen := range s.generators {
		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		raw, err := gen.GenerateContent(attemptCtx, prompt)
		cancel()

		if err == nil {
			monitoring.AIGenerationCounter.WithLabelValues(strconv.Itoa(i), "success").Inc()
			return s.parseQuestions(raw)
		}

		if !IsQuotaError(err) {
			monitoring.AIGenerationCounter.WithLabelValues(strconv.Itoa(i), "error").Inc()
			return nil, err
		}

		monitoring.AIGenerationCounter.WithLabelValues(strconv.Itoa(i), "quota").Inc()
		logger.Log.Warn("AI credential quota exhausted, rotating",
			zap.Int("credential", i),
			zap.Error(err))
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", util.ErrAllCredentialsExhausted, lastErr)
}

// IsQuotaError 判定配额/限流类错误：HTTP 429，或报文中含 429、Quota、Too Many Requests。
func IsQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Quota") ||
		strings.Contains(msg, "Too Many Requests")
}

func (s *AIService) parseQuestions(raw string) ([]model.Question, error) {
	clean := RepairJSON(raw)

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(clean), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAIResponseInvalid, err)
	}

	questions := make([]model.Question, 0, len(entries))
	for i, entry := range entries {
		var q model.Question
		if err := json.Unmarshal(entry, &q); err != nil {
			logger.Log.Warn("discarding malformed generated question",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := validateQuestion(q); err != nil {
			logger.Log.Warn("discarding invalid generated question",
				zap.Int("index", i), zap.String("questionId", q.ID), zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no valid questions in response", util.ErrAIResponseInvalid)
	}
	return questions, nil
}

// validateQuestion 按题型校验单个题目：answer 必须是选项 id 的非空子集，
// matching 题必须带两列列表。生成结果和人工创建的题目都走这里。
func validateQuestion(q model.Question) error {
	if q.ID == "" {
		return errors.New("missing id")
	}
	switch q.Type {
	case model.QuestionSingle, model.QuestionMulti, model.QuestionMatching:
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	if q.Question == "" {
		return errors.New("missing question text")
	}
	if len(q.Options) == 0 {
		return errors.New("missing options")
	}
	if len(q.Answer) == 0 {
		return errors.New("missing answer")
	}

	optionIDs := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if opt.ID == "" {
			return errors.New("option with empty id")
		}
		optionIDs[opt.ID] = true
	}
	for _, id := range q.Answer {
		if !optionIDs[id] {
			return fmt.Errorf("answer %q not among option ids", id)
		}
	}

	if q.Type == model.QuestionMatching && (len(q.ListA) == 0 || len(q.ListB) == 0) {
		return errors.New("matching question requires list_a and list_b")
	}
	return nil
}

var (
	controlChars       = regexp.MustCompile(`[\x00-\x1F]+`)
	trailingCommaClose = regexp.MustCompile(`,\s*([\]}])`)
)

// RepairJSON 对模型输出做尽力而为的清洗：去掉代码围栏、弯引号、
// 控制字符和闭合符前的尾逗号。永不失败，清洗后解析仍失败由调用方处理。
func RepairJSON(text string) string {
	fixed := strings.ReplaceAll(text, "```json", "")
	fixed = strings.ReplaceAll(fixed, "```", "")
	fixed = strings.ReplaceAll(fixed, "“", `"`)
	fixed = strings.ReplaceAll(fixed, "”", `"`)
	fixed = controlChars.ReplaceAllString(fixed, "")
	fixed = trailingCommaClose.ReplaceAllString(fixed, "$1")
	return strings.TrimSpace(fixed)
}

func buildGenerationPrompt(req GenerateRequest, total int) string {
	difficultyLabel := req.Difficulty
	if strings.ToLower(req.Difficulty) == "hard" {
		difficultyLabel = "Expert / Hard"
	}

	return fmt.Sprintf(`You are an expert exam setter for a State Public Service Commission (Pre/Mains).
Your task is to generate a JSON array of %d high-quality questions.

EXAM STANDARD: State PSC Level
- LEVEL: %s (State PSC Standard).
- STYLE: Do NOT create simple one-liners. Focus on Statement Based and Chronology questions.
- TONE: Formal, Academic.
- SUBJECTS: %s
- CONTEXT: "%s"

DISTRIBUTION
- %d x Single Correct (statement based or assertion-reason where possible).
- %d x Multiple Selection (Select 1, 2, 3 etc).
- %d x Match List Type.

STRICT JSON SCHEMA
Output MUST be ONLY a JSON array "[]". No markdown.

TYPE "single":
{"id": "unique_string", "type": "single", "question": "...", "options": [{"id": "A", "text": "..."}, {"id": "B", "text": "..."}, {"id": "C", "text": "..."}, {"id": "D", "text": "..."}], "answer": ["A"], "hint": "...", "analysis": "..."}

TYPE "multi" (checkbox style):
{"id": "unique_string", "type": "multi", "question": "...", "options": [...], "answer": ["A", "C"], "hint": "...", "analysis": "..."}

TYPE "matching":
{"id": "unique_string", "type": "matching", "question": "Match List I with List II", "list_a": ["A. ...", "B. ...", "C. ...", "D. ..."], "list_b": ["1. ...", "2. ...", "3. ...", "4. ..."], "options": [{"id": "A", "text": "A-1, B-2, C-3, D-4"}], "answer": ["A"], "hint": "...", "analysis": "..."}`,
		total, difficultyLabel, req.Subjects, req.Remarks,
		req.SingleCount, req.MultiCount, req.MatchingCount)
}
