package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// AnswerMap 题目 id 到所选选项 id 集合的映射。缺失或为空均视为未作答。
type AnswerMap map[string][]string

func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(AnswerMap{})
	}
	return json.Marshal(m)
}

func (m *AnswerMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

type AttemptStats struct {
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	Partial     int `json:"partial"`
	Unattempted int `json:"unattempted"`
}

func (s AttemptStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *AttemptStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Attempt 一次提交产生的判分记录，创建后不可变。
// (user_id, test_id, attempt_number) 上的唯一索引保证序号不重复，插入冲突时由仓储层重试。
// swagger:model Attempt
type Attempt struct {
	UUIDBase
	UserID        uint         `gorm:"index;type:bigint unsigned;uniqueIndex:idx_user_test_attempt" json:"userId"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TestID        string       `gorm:"index;type:varchar(36);uniqueIndex:idx_user_test_attempt" json:"testId"`
	AttemptNumber int          `gorm:"not null;uniqueIndex:idx_user_test_attempt" json:"attemptNumber"`
	Score         float64      `gorm:"not null" json:"score"` // 可为负、可为小数
	MaxScore      float64      `gorm:"not null" json:"maxScore"`
	Percentage    int          `gorm:"not null" json:"percentage"`
	Stats         AttemptStats `gorm:"type:json" json:"stats"`
	Answers       AnswerMap    `gorm:"type:json" json:"answers"`
	TimeTaken     int          `gorm:"default:0" json:"timeTaken"` // 秒，由调用方定义
	CompletedAt   time.Time    `json:"completedAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
