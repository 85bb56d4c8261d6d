package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateRole(id uint, role model.UserRole) (*model.User, error) {
	if err := r.DB.Model(&model.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

func (r *UserRepository) UpdateApproval(id uint, approved bool) (*model.User, error) {
	if err := r.DB.Model(&model.User{}).Where("id = ?", id).Update("is_approved", approved).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

func (r *UserRepository) UpdateLastLogin(id uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("last_login", gorm.Expr("CURRENT_TIMESTAMP(3)")).Error
}

func (r *UserRepository) UpdateAvatar(id uint, url string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("avatar", url).Error
}
