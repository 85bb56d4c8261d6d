package repository

import (
	"context"
	"encoding/json"
	"exam_prep_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const takingViewTTL = 5 * time.Minute

type TestRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewTestRepository(db *gorm.DB, rdb *redis.Client) *TestRepository {
	return &TestRepository{DB: db, RDB: rdb}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) FindByID(id string) (*model.Test, error) {
	var test model.Test
	err := r.DB.Where("id = ?", id).First(&test).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// FindAssigned 返回对该用户可见的测验：公开的或指派给其邮箱的。
func (r *TestRepository) FindAssigned(email string) ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Where("assigned_to IN ?", []string{model.AssignedToPublic, email}).
		Order("created_at desc").Find(&tests).Error
	return tests, err
}

func (r *TestRepository) FindAll() ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Order("created_at desc").Find(&tests).Error
	return tests, err
}

// Update 全文档覆盖更新，并发写入为 last-writer-wins。
func (r *TestRepository) Update(test *model.Test) error {
	if err := r.DB.Save(test).Error; err != nil {
		return err
	}
	r.InvalidateTakingView(test.ID)
	return nil
}

func (r *TestRepository) Delete(id string) error {
	if err := r.DB.Where("id = ?", id).Delete(&model.Test{}).Error; err != nil {
		return err
	}
	r.InvalidateTakingView(id)
	return nil
}

func takingViewKey(testID string) string {
	return "test:taking:" + testID
}

// GetCachedTakingView 读取缓存的隐藏答案视图，未命中返回 nil。
func (r *TestRepository) GetCachedTakingView(testID string) *model.Test {
	if r.RDB == nil {
		return nil
	}
	ctx := context.Background()
	raw, err := r.RDB.Get(ctx, takingViewKey(testID)).Bytes()
	if err != nil {
		return nil
	}
	var test model.Test
	if err := json.Unmarshal(raw, &test); err != nil {
		return nil
	}
	return &test
}

func (r *TestRepository) CacheTakingView(test *model.Test) {
	if r.RDB == nil {
		return
	}
	raw, err := json.Marshal(test)
	if err != nil {
		return
	}
	ctx := context.Background()
	r.RDB.Set(ctx, takingViewKey(test.ID), raw, takingViewTTL)
}

func (r *TestRepository) InvalidateTakingView(testID string) {
	if r.RDB == nil {
		return
	}
	ctx := context.Background()
	r.RDB.Del(ctx, takingViewKey(testID))
}
