package controller

import (
	"errors"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	AIService *service.AIService
}

func NewAIController(aiService *service.AIService) *AIController {
	return &AIController{AIService: aiService}
}

type GenerateQuestionsRequest struct {
	SingleCount   int    `json:"singleCount"`
	MultiCount    int    `json:"multiCount"`
	MatchingCount int    `json:"matchingCount"`
	Difficulty    string `json:"difficulty"`
	Subjects      string `json:"subjects"`
	Remarks       string `json:"remarks"`
}

// Generate godoc
// @Summary AI生成题目
// @Description 调用外部生成模型产出题目数组，凭据配额耗尽时自动轮换
// @Tags AI
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateQuestionsRequest true "生成参数"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 502 {object} util.Response "生成失败"
// @Router /api/ai/generate [post]
func (c *AIController) Generate(ctx *gin.Context) {
	var req GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 默认值与原有前端约定保持一致
	if req.SingleCount == 0 && req.MultiCount == 0 && req.MatchingCount == 0 {
		req.SingleCount = 5
	}
	if req.Difficulty == "" {
		req.Difficulty = "Medium"
	}
	if req.Subjects == "" {
		req.Subjects = "General"
	}

	questions, err := c.AIService.GenerateQuestions(ctx.Request.Context(), service.GenerateRequest{
		SingleCount:   req.SingleCount,
		MultiCount:    req.MultiCount,
		MatchingCount: req.MatchingCount,
		Difficulty:    req.Difficulty,
		Subjects:      req.Subjects,
		Remarks:       req.Remarks,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidGenerateRequest):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNoCredentials):
			util.Error(ctx, http.StatusServiceUnavailable, "AI generation is not configured")
		case errors.Is(err, util.ErrAllCredentialsExhausted),
			errors.Is(err, util.ErrAIResponseInvalid):
			util.Error(ctx, http.StatusBadGateway, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, questions)
}
