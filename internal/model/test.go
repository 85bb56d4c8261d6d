package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMulti    QuestionType = "multi"
	QuestionMatching QuestionType = "matching"
)

// AssignedToPublic 表示测验对所有用户可见
const AssignedToPublic = "public"

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 测验中的单个题目。answer 必须是 options 中出现的 id 的非空子集。
// swagger:model Question
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Options  []Option     `json:"options"`
	ListA    []string     `json:"list_a,omitempty"` // matching 题左列
	ListB    []string     `json:"list_b,omitempty"` // matching 题右列
	Answer   []string     `json:"answer,omitempty"`
	Hint     string       `json:"hint,omitempty"`
	Analysis string       `json:"analysis,omitempty"`
}

type QuestionList []Question

func (l QuestionList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(QuestionList{})
	}
	return json.Marshal(l)
}

func (l *QuestionList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(StringList{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// TestSettings 由前端消费的测验设置，核心逻辑不读取。
type TestSettings struct {
	AllowHints   bool `json:"allowHints"`
	ShowAnalysis bool `json:"showAnalysis"`
	AllowPause   bool `json:"allowPause"`
}

func (s TestSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *TestSettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// swagger:model Test
type Test struct {
	UUIDBase
	Title      string       `gorm:"size:255;not null" json:"title"`
	Duration   int          `gorm:"default:0" json:"duration"` // 分钟
	Subjects   StringList   `gorm:"type:json" json:"subjects"`
	AssignedTo string       `gorm:"size:100;default:'public';index" json:"assignedTo"`
	Settings   TestSettings `gorm:"type:json" json:"settings"`
	Questions  QuestionList `gorm:"type:json" json:"questions"`
	CreatedBy  uint         `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (Test) TableName() string {
	return "tests"
}

// Sanitized 返回隐藏 answer/analysis 字段的副本，供考试进行中读取。
func (t *Test) Sanitized() *Test {
	out := *t
	out.Questions = make(QuestionList, len(t.Questions))
	for i, q := range t.Questions {
		q.Answer = nil
		q.Analysis = ""
		out.Questions[i] = q
	}
	return &out
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for JSON column")
	}
}
