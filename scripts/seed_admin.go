//go:build ignore

// 种子脚本：创建已审批的超级管理员账号。
// 用法: go run scripts/seed_admin.go -name Admin -email admin@example.com -password secret123
package main

import (
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/pkg/database"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	name := flag.String("name", "Admin", "管理员姓名")
	email := flag.String("email", "", "管理员邮箱")
	password := flag.String("password", "", "管理员密码")
	superuser := flag.Bool("superuser", true, "是否授予超级用户标志")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var existing model.User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("user %s already exists", *email)
	}

	user := model.User{
		Name:        *name,
		Email:       *email,
		Password:    string(hashed),
		Role:        model.SuperAdmin,
		IsApproved:  true,
		IsSuperuser: *superuser,
	}

	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("admin user %s created (id=%d, superuser=%t)", *email, user.ID, user.IsSuperuser)
}
