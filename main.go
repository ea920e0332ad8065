// @title 幼儿发展评估 API
// @version 1.0
// @description 幼儿园发展评估数据的聚合与图表服务。

// @contact.name API支持
// @contact.email support@example.com

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"kindergarten_backend/internal/app"
	"kindergarten_backend/internal/config"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
