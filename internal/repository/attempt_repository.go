package repository

import (
	"errors"
	"exam_prep_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

// 提交并发冲突时重算序号的最大次数
const maxNumberingRetries = 3

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.Where("id = ?", id).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) FindAll() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("User").Order("completed_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountByUserAndTest(userID uint, testID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND test_id = ?", userID, testID).Count(&count).Error
	return count, err
}

// CreateNumbered 分配 attemptNumber 并插入。序号由 count+1 得出，
// (user_id, test_id, attempt_number) 的唯一索引兜底：并发提交撞号时
// 重新计数并重试，保证序号不重复。
func (r *AttemptRepository) CreateNumbered(attempt *model.Attempt) error {
	var lastErr error
	for i := 0; i < maxNumberingRetries; i++ {
		count, err := r.CountByUserAndTest(attempt.UserID, attempt.TestID)
		if err != nil {
			return err
		}
		attempt.AttemptNumber = int(count) + 1

		err = r.DB.Create(attempt).Error
		if err == nil {
			return nil
		}
		if !isDuplicateKeyError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
