package controller

import (
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		StorageService: storageService,
	}
}

// ListUsers godoc
// @Summary 用户列表
// @Description 获取全部用户（不含密码），按创建时间倒序
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.UserService.ListUsers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole godoc
// @Summary 更新用户角色
// @Description 在 tester 与 admin 之间切换角色
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "用户ID"
// @Param   body body UpdateRoleRequest true "目标角色"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "无效角色"
// @Router /api/users/{userId}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateRole(uint(userID), model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, util.ErrInvalidRole) {
			util.BadRequest(ctx, "invalid role")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ApproveUser godoc
// @Summary 审批用户
// @Description 将用户标记为已审批，允许其登录
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/{userId}/approve [post]
func (c *UserController) ApproveUser(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	user, err := c.UserService.ApproveUser(uint(userID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type ToggleStatusRequest struct {
	IsApproved bool `json:"isApproved"`
}

// ToggleStatus godoc
// @Summary 启用/停用用户
// @Description 设置用户审批状态
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "用户ID"
// @Param   body body ToggleStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/{userId}/status [put]
func (c *UserController) ToggleStatus(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req ToggleStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.SetApproval(uint(userID), req.IsApproved)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 上传当前用户头像文件
// @Tags 用户管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "头像文件"
// @Success 200 {object} util.Response{data=object}
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%d_%d%s", claims.UserID, time.Now().Unix(), filepath.Ext(file.Filename))
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserService.UpdateAvatar(claims.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatar": url})
}
