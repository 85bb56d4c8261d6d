package service

import (
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) ListUsers() ([]model.User, error) {
	return s.UserRepo.FindAll()
}

// UpdateRole 只允许在 tester 和 admin 之间切换，superadmin 不通过接口授予。
func (s *UserService) UpdateRole(userID uint, role model.UserRole) (*model.User, error) {
	if role != model.Tester && role != model.Admin {
		return nil, util.ErrInvalidRole
	}
	return s.UserRepo.UpdateRole(userID, role)
}

func (s *UserService) ApproveUser(userID uint) (*model.User, error) {
	return s.UserRepo.UpdateApproval(userID, true)
}

func (s *UserService) SetApproval(userID uint, approved bool) (*model.User, error) {
	return s.UserRepo.UpdateApproval(userID, approved)
}

func (s *UserService) UpdateAvatar(userID uint, url string) error {
	return s.UserRepo.UpdateAvatar(userID, url)
}
