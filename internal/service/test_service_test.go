package service

import (
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/util"
	"testing"
)

func TestBestScoreNegativeAttempts(t *testing.T) {
	attempts := []model.Attempt{
		{Score: -1.5},
		{Score: -0.25},
		{Score: -3},
	}
	if got := bestScore(attempts); got != -0.25 {
		t.Errorf("bestScore = %v, want -0.25 (negative maximum, not zero)", got)
	}
}

func TestBestScoreMixedAttempts(t *testing.T) {
	attempts := []model.Attempt{{Score: 2}, {Score: -0.5}, {Score: 4.5}}
	if got := bestScore(attempts); got != 4.5 {
		t.Errorf("bestScore = %v, want 4.5", got)
	}
}

func TestValidateQuestionsRejectsBadAnswer(t *testing.T) {
	// answer 不在选项 id 之内
	err := validateQuestions(model.QuestionList{singleQ("q1", "Z")})
	if !errors.Is(err, util.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestValidateQuestionsAcceptsEmptyList(t *testing.T) {
	if err := validateQuestions(model.QuestionList{}); err != nil {
		t.Errorf("empty question list should pass for drafts, got %v", err)
	}
}

func TestCreateTestRejectsInvalidQuestions(t *testing.T) {
	svc := &TestService{}
	test := &model.Test{
		Title:     "draft",
		Questions: model.QuestionList{singleQ("q1", "Z")},
	}
	if err := svc.CreateTest(test, 1); !errors.Is(err, util.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestUpdateTestRejectsInvalidQuestions(t *testing.T) {
	svc := &TestService{}
	updated := &model.Test{Questions: model.QuestionList{matchingQ("q1", "Z")}}
	if _, err := svc.UpdateTest("some-id", updated); !errors.Is(err, util.ErrInvalidQuestion) {
		t.Errorf("expected ErrInvalidQuestion, got %v", err)
	}
}
