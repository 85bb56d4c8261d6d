package service

import (
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/util"
	"math"
)

// 计分权重。multi 题答错扣 0.25，single/matching 答错扣 0.5，
// multi 题无错选的真子集得 1 分部分分。
const (
	scoreCorrect      = 2.0
	scorePartialMulti = 1.0
	penaltyMulti      = -0.25
	penaltySingle     = -0.5
)

type QuestionOutcome string

const (
	OutcomeCorrect     QuestionOutcome = "correct"
	OutcomeIncorrect   QuestionOutcome = "incorrect"
	OutcomePartial     QuestionOutcome = "partial"
	OutcomeUnattempted QuestionOutcome = "unattempted"
)

type QuestionResult struct {
	QuestionID string          `json:"questionId"`
	Outcome    QuestionOutcome `json:"outcome"`
	Delta      float64         `json:"delta"`
}

type GradeResult struct {
	Score       float64            `json:"score"`
	MaxScore    float64            `json:"maxScore"`
	Percentage  int                `json:"percentage"`
	Stats       model.AttemptStats `json:"stats"`
	PerQuestion []QuestionResult   `json:"perQuestion"`
}

// Grade 对一份作答判分。纯函数，不做任何持久化。
// 百分比向下钳制到 0，不向上钳制到 100（负分卷面取 0，总分权重使然）。
func Grade(questions model.QuestionList, answers model.AnswerMap) (*GradeResult, error) {
	if len(questions) == 0 {
		return nil, util.ErrTestHasNoQuestions
	}

	result := &GradeResult{
		MaxScore:    float64(len(questions)) * scoreCorrect,
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		outcome, delta := gradeQuestion(q, answers[q.ID])
		result.Score += delta
		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			QuestionID: q.ID,
			Outcome:    outcome,
			Delta:      delta,
		})

		switch outcome {
		case OutcomeCorrect:
			result.Stats.Correct++
		case OutcomeIncorrect:
			result.Stats.Incorrect++
		case OutcomePartial:
			result.Stats.Partial++
		case OutcomeUnattempted:
			result.Stats.Unattempted++
		}
	}

	pct := math.Round(result.Score / result.MaxScore * 100)
	if pct < 0 {
		pct = 0
	}
	result.Percentage = int(pct)

	return result, nil
}

func gradeQuestion(q model.Question, selected []string) (QuestionOutcome, float64) {
	selSet := toSet(selected)
	if len(selSet) == 0 {
		return OutcomeUnattempted, 0
	}

	correctSet := toSet(q.Answer)

	if q.Type == model.QuestionMulti {
		for id := range selSet {
			if !correctSet[id] {
				return OutcomeIncorrect, penaltyMulti
			}
		}
		if len(selSet) == len(correctSet) {
			return OutcomeCorrect, scoreCorrect
		}
		return OutcomePartial, scorePartialMulti
	}

	// single 与 matching 判定一致：集合完全相等才得分
	if setsEqual(selSet, correctSet) {
		return OutcomeCorrect, scoreCorrect
	}
	return OutcomeIncorrect, penaltySingle
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
