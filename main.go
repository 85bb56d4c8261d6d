// @title Exam Prep 后端 API
// @version 1.0
// @description 在线测验平台的后端服务器：测验分发、判分与AI出题。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"exam_prep_backend/internal/app"
	"exam_prep_backend/internal/config"
	"flag"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)

	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
