package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrAccountNotApproved = errors.New("account pending approval, please contact admin")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTestNotFound       = errors.New("test not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrTestHasNoQuestions = errors.New("test has no questions")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrInvalidRole        = errors.New("invalid role")

	// AI 题目生成相关
	ErrInvalidGenerateRequest  = errors.New("invalid generate request")
	ErrNoCredentials           = errors.New("no AI credentials configured")
	ErrAllCredentialsExhausted = errors.New("all AI credentials exhausted")
	ErrAIResponseInvalid       = errors.New("AI returned invalid response")
)
