package service

import (
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/util"
	"testing"
)

func singleQ(id string, answer ...string) model.Question {
	return model.Question{
		ID:       id,
		Type:     model.QuestionSingle,
		Question: "stem " + id,
		Options: []model.Option{
			{ID: "A", Text: "a"}, {ID: "B", Text: "b"},
			{ID: "C", Text: "c"}, {ID: "D", Text: "d"},
		},
		Answer: answer,
	}
}

func multiQ(id string, answer ...string) model.Question {
	q := singleQ(id, answer...)
	q.Type = model.QuestionMulti
	return q
}

func matchingQ(id string, answer ...string) model.Question {
	q := singleQ(id, answer...)
	q.Type = model.QuestionMatching
	q.ListA = []string{"A. x", "B. y"}
	q.ListB = []string{"1. p", "2. q"}
	return q
}

func TestGradeEmptyQuestions(t *testing.T) {
	_, err := Grade(model.QuestionList{}, model.AnswerMap{})
	if !errors.Is(err, util.ErrTestHasNoQuestions) {
		t.Fatalf("expected ErrTestHasNoQuestions, got %v", err)
	}
}

func TestGradeSingleAndMatching(t *testing.T) {
	tests := []struct {
		name     string
		question model.Question
		selected []string
		outcome  QuestionOutcome
		delta    float64
	}{
		{name: "single exact match", question: singleQ("q1", "A"), selected: []string{"A"}, outcome: OutcomeCorrect, delta: 2},
		{name: "single wrong pick", question: singleQ("q1", "A"), selected: []string{"B"}, outcome: OutcomeIncorrect, delta: -0.5},
		{name: "single empty selection", question: singleQ("q1", "A"), selected: []string{}, outcome: OutcomeUnattempted, delta: 0},
		{name: "single missing selection", question: singleQ("q1", "A"), selected: nil, outcome: OutcomeUnattempted, delta: 0},
		{name: "single overlapping superset still incorrect", question: singleQ("q1", "A"), selected: []string{"A", "B"}, outcome: OutcomeIncorrect, delta: -0.5},
		{name: "matching correct", question: matchingQ("q1", "B"), selected: []string{"B"}, outcome: OutcomeCorrect, delta: 2},
		{name: "matching wrong", question: matchingQ("q1", "B"), selected: []string{"A"}, outcome: OutcomeIncorrect, delta: -0.5},
		{name: "matching empty", question: matchingQ("q1", "A"), selected: nil, outcome: OutcomeUnattempted, delta: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := model.AnswerMap{}
			if tc.selected != nil {
				answers[tc.question.ID] = tc.selected
			}
			result, err := Grade(model.QuestionList{tc.question}, answers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.PerQuestion[0].Outcome; got != tc.outcome {
				t.Errorf("outcome = %s, want %s", got, tc.outcome)
			}
			if got := result.PerQuestion[0].Delta; got != tc.delta {
				t.Errorf("delta = %v, want %v", got, tc.delta)
			}
		})
	}
}

func TestGradeMulti(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		outcome  QuestionOutcome
		delta    float64
	}{
		{name: "exact match", selected: []string{"A", "C"}, outcome: OutcomeCorrect, delta: 2},
		{name: "exact match order independent", selected: []string{"C", "A"}, outcome: OutcomeCorrect, delta: 2},
		{name: "proper subset partial", selected: []string{"A"}, outcome: OutcomePartial, delta: 1},
		{name: "wrong pick present", selected: []string{"A", "B"}, outcome: OutcomeIncorrect, delta: -0.25},
		{name: "only wrong picks", selected: []string{"B", "D"}, outcome: OutcomeIncorrect, delta: -0.25},
		{name: "empty selection", selected: nil, outcome: OutcomeUnattempted, delta: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := multiQ("m1", "A", "C")
			answers := model.AnswerMap{}
			if tc.selected != nil {
				answers["m1"] = tc.selected
			}
			result, err := Grade(model.QuestionList{q}, answers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.PerQuestion[0].Outcome; got != tc.outcome {
				t.Errorf("outcome = %s, want %s", got, tc.outcome)
			}
			if result.Score != tc.delta {
				t.Errorf("score = %v, want %v", result.Score, tc.delta)
			}
		})
	}
}

func TestGradeTwoSingles(t *testing.T) {
	questions := model.QuestionList{
		singleQ("q1", "A"),
		singleQ("q2", "B"),
	}
	answers := model.AnswerMap{
		"q1": {"A"},
		"q2": {},
	}

	result, err := Grade(questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Stats.Correct != 1 || result.Stats.Unattempted != 1 || result.Stats.Incorrect != 0 || result.Stats.Partial != 0 {
		t.Errorf("stats = %+v, want correct=1 unattempted=1", result.Stats)
	}
	if result.Score != 2 {
		t.Errorf("score = %v, want 2", result.Score)
	}
	if result.MaxScore != 4 {
		t.Errorf("maxScore = %v, want 4", result.MaxScore)
	}
	if result.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", result.Percentage)
	}
}

func TestGradeStatsSumToQuestionCount(t *testing.T) {
	questions := model.QuestionList{
		singleQ("q1", "A"),
		multiQ("q2", "A", "C"),
		matchingQ("q3", "B"),
		singleQ("q4", "D"),
		multiQ("q5", "B", "D"),
	}
	answers := model.AnswerMap{
		"q1": {"A"},
		"q2": {"A"},
		"q3": {"C"},
		"q5": {"A", "B"},
	}

	result, err := Grade(questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := result.Stats.Correct + result.Stats.Incorrect + result.Stats.Partial + result.Stats.Unattempted
	if sum != len(questions) {
		t.Errorf("stats sum = %d, want %d", sum, len(questions))
	}
	if result.MaxScore != float64(2*len(questions)) {
		t.Errorf("maxScore = %v, want %v", result.MaxScore, 2*len(questions))
	}
	// 1 correct (+2), 1 partial (+1), 1 incorrect matching (-0.5), 1 unattempted, 1 incorrect multi (-0.25)
	if result.Score != 2.25 {
		t.Errorf("score = %v, want 2.25", result.Score)
	}
}

func TestGradePercentageFlooredAtZero(t *testing.T) {
	questions := model.QuestionList{
		singleQ("q1", "A"),
		singleQ("q2", "B"),
	}
	answers := model.AnswerMap{
		"q1": {"B"},
		"q2": {"A"},
	}

	result, err := Grade(questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != -1 {
		t.Errorf("score = %v, want -1", result.Score)
	}
	if result.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 (floored)", result.Percentage)
	}
}
