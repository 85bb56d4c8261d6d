package model

import (
	"time"
)

type UserRole string

const (
	Tester     UserRole = "tester"
	Admin      UserRole = "admin"
	SuperAdmin UserRole = "superadmin"
)

// swagger:model User
type User struct {
	BaseModel
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:100;unique;not null" json:"email"`
	Password    string    `gorm:"size:100;not null" json:"-"`
	Role        UserRole  `gorm:"type:enum('tester','admin','superadmin');default:'tester'" json:"role"`
	IsApproved  bool      `gorm:"default:false" json:"isApproved"`
	IsSuperuser bool      `gorm:"default:false" json:"isSuperuser"` // 显式超级用户标志，替代硬编码邮箱判断
	Avatar      string    `gorm:"size:255" json:"avatar"`
	LastLogin   time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
