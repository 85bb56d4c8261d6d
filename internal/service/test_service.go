package service

import (
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TestService struct {
	TestRepo    *repository.TestRepository
	AttemptRepo *repository.AttemptRepository
}

func NewTestService(testRepo *repository.TestRepository, attemptRepo *repository.AttemptRepository) *TestService {
	return &TestService{
		TestRepo:    testRepo,
		AttemptRepo: attemptRepo,
	}
}

func (s *TestService) CreateTest(test *model.Test, creatorID uint) error {
	if err := validateQuestions(test.Questions); err != nil {
		return err
	}
	test.CreatedBy = creatorID
	if test.AssignedTo == "" {
		test.AssignedTo = model.AssignedToPublic
	}
	return s.TestRepo.Create(test)
}

// validateQuestions 人工创建和更新的题目与生成的题目遵守同一套约束。
// 空题目列表放行，草稿允许没有题目。
func validateQuestions(questions model.QuestionList) error {
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: question %d: %v", util.ErrInvalidQuestion, i, err)
		}
	}
	return nil
}

// DashboardTest 测验列表项：隐藏答案的测验文档加上该用户的作答历史。
type DashboardTest struct {
	*model.Test
	Attempts        []model.Attempt `json:"attempts"`
	IsAttempted     bool            `json:"isAttempted"`
	LastAttemptDate *time.Time      `json:"lastAttemptDate"`
	BestScore       float64         `json:"bestScore"`
}

func (s *TestService) GetDashboard(userEmail string, userID uint) ([]DashboardTest, error) {
	tests, err := s.TestRepo.FindAssigned(userEmail)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	byTest := make(map[string][]model.Attempt)
	for _, a := range attempts {
		byTest[a.TestID] = append(byTest[a.TestID], a)
	}

	dashboard := make([]DashboardTest, 0, len(tests))
	for i := range tests {
		testAttempts := byTest[tests[i].ID]
		if testAttempts == nil {
			testAttempts = []model.Attempt{}
		}

		item := DashboardTest{
			Test:        tests[i].Sanitized(),
			Attempts:    testAttempts,
			IsAttempted: len(testAttempts) > 0,
		}
		if len(testAttempts) > 0 {
			item.BestScore = bestScore(testAttempts)
			// FindByUser 按完成时间倒序，首个即最近一次
			item.LastAttemptDate = &testAttempts[0].CompletedAt
		}
		dashboard = append(dashboard, item)
	}

	return dashboard, nil
}

// TakingView 考试进行中的测验视图：答案与解析被剥离。
type TakingView struct {
	*model.Test
	CurrentAttemptNumber int `json:"currentAttemptNumber"`
}

func (s *TestService) GetTestForTaking(testID string, userID uint) (*TakingView, error) {
	sanitized := s.TestRepo.GetCachedTakingView(testID)
	if sanitized == nil {
		test, err := s.findTest(testID)
		if err != nil {
			return nil, err
		}
		sanitized = test.Sanitized()
		s.TestRepo.CacheTakingView(sanitized)
	}

	count, err := s.AttemptRepo.CountByUserAndTest(userID, testID)
	if err != nil {
		return nil, err
	}

	return &TakingView{
		Test:                 sanitized,
		CurrentAttemptNumber: int(count) + 1,
	}, nil
}

// GetTestWithAnswers 交卷后的解析视图，答案不剥离。
func (s *TestService) GetTestWithAnswers(testID string) (*model.Test, error) {
	return s.findTest(testID)
}

func (s *TestService) GetAttempt(attemptID string, claims *util.Claims) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	if attempt.UserID != claims.UserID && !claims.IsSuperuser {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// SubmitTest 判分并持久化一条 Attempt 记录。
func (s *TestService) SubmitTest(testID string, userID uint, answers model.AnswerMap, timeTaken int) (*model.Attempt, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}

	result, err := Grade(test.Questions, answers)
	if err != nil {
		return nil, err
	}

	attempt := &model.Attempt{
		UserID:      userID,
		TestID:      testID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Stats:       result.Stats,
		Answers:     answers,
		TimeTaken:   timeTaken,
		CompletedAt: time.Now(),
	}

	if err := s.AttemptRepo.CreateNumbered(attempt); err != nil {
		return nil, err
	}

	logger.Log.Info("test submitted",
		zap.String("testId", testID),
		zap.Uint("userId", userID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.Float64("score", attempt.Score))

	return attempt, nil
}

func (s *TestService) UpdateTest(testID string, updated *model.Test) (*model.Test, error) {
	if err := validateQuestions(updated.Questions); err != nil {
		return nil, err
	}

	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}

	test.Title = updated.Title
	test.Duration = updated.Duration
	test.Subjects = updated.Subjects
	test.AssignedTo = updated.AssignedTo
	test.Settings = updated.Settings
	test.Questions = updated.Questions

	if err := s.TestRepo.Update(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) DeleteTest(testID string) error {
	if _, err := s.findTest(testID); err != nil {
		return err
	}
	return s.TestRepo.Delete(testID)
}

func (s *TestService) GetAllTests() ([]model.Test, error) {
	return s.TestRepo.FindAll()
}

// GetAllAttempts 全量作答报表，供超级用户查看。
func (s *TestService) GetAllAttempts() ([]model.Attempt, error) {
	return s.AttemptRepo.FindAll()
}

// bestScore 返回历史最高得分。全部为负时报告实际的负最大值，不归零。
func bestScore(attempts []model.Attempt) float64 {
	best := attempts[0].Score
	for _, a := range attempts[1:] {
		if a.Score > best {
			best = a.Score
		}
	}
	return best
}

func (s *TestService) findTest(testID string) (*model.Test, error) {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}
