package controller

import (
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// CreateTest godoc
// @Summary 创建测验
// @Description 创建新的测验文档，创建者为当前用户
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.Test true "测验文档"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/tests [post]
func (c *TestController) CreateTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var test model.Test
	if err := ctx.ShouldBindJSON(&test); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TestService.CreateTest(&test, claims.UserID); err != nil {
		if errors.Is(err, util.ErrInvalidQuestion) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, test)
}

// GetDashboard godoc
// @Summary 测验看板
// @Description 当前用户可见的测验（公开或指派给其邮箱），含作答历史与最佳成绩，答案已隐藏
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.DashboardTest}
// @Router /api/tests/dashboard [get]
func (c *TestController) GetDashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.TestService.GetDashboard(claims.Email, claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// GetTest godoc
// @Summary 获取测验（考试视图）
// @Description 返回隐藏答案与解析的测验，附当前轮次序号
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.TakingView}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.TestService.GetTestForTaking(ctx.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "test not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetAnalysis godoc
// @Summary 获取测验（解析视图）
// @Description 返回包含答案与解析的完整测验，供交卷后查看
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/tests/{id}/analysis [get]
func (c *TestController) GetAnalysis(ctx *gin.Context) {
	test, err := c.TestService.GetTestWithAnswers(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "test not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// GetAttempt godoc
// @Summary 获取作答记录
// @Description 仅本人或超级用户可查看
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path string true "作答记录ID"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/attempts/{attemptId} [get]
func (c *TestController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.TestService.GetAttempt(ctx.Param("attemptId"), claims)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx, "attempt not found")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempt)
}

type SubmitTestRequest struct {
	Answers   model.AnswerMap `json:"answers" binding:"required"`
	TimeTaken int             `json:"timeTaken"`
}

// SubmitTest godoc
// @Summary 提交作答
// @Description 判分并持久化一条作答记录
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Param   body body SubmitTestRequest true "作答内容"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Failure 400 {object} util.Response "测验无题目"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.TestService.SubmitTest(ctx.Param("id"), claims.UserID, req.Answers, req.TimeTaken)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx, "test not found")
		case errors.Is(err, util.ErrTestHasNoQuestions):
			util.BadRequest(ctx, "test has no questions")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempt)
}

// UpdateTest godoc
// @Summary 更新测验
// @Description 全文档覆盖更新（指派、题目等），仅超级用户
// @Tags 测验管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Param   body body model.Test true "测验文档"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/admin/tests/{id} [put]
func (c *TestController) UpdateTest(ctx *gin.Context) {
	var updated model.Test
	if err := ctx.ShouldBindJSON(&updated); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.UpdateTest(ctx.Param("id"), &updated)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx, "test not found")
		case errors.Is(err, util.ErrInvalidQuestion):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, test)
}

// DeleteTest godoc
// @Summary 删除测验
// @Description 仅超级用户
// @Tags 测验管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/admin/tests/{id} [delete]
func (c *TestController) DeleteTest(ctx *gin.Context) {
	if err := c.TestService.DeleteTest(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "test not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "test deleted"})
}

// GetAdminTests godoc
// @Summary 全部测验
// @Description 管理视图，仅超级用户
// @Tags 测验管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Test}
// @Router /api/admin/tests [get]
func (c *TestController) GetAdminTests(ctx *gin.Context) {
	tests, err := c.TestService.GetAllTests()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// GetAdminReports godoc
// @Summary 全部作答报表
// @Description 管理视图，仅超级用户
// @Tags 测验管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Router /api/admin/reports [get]
func (c *TestController) GetAdminReports(ctx *gin.Context) {
	attempts, err := c.TestService.GetAllAttempts()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
