package main

import (
	"context"
	"log"

	"resumedesk/internal/config"
	"resumedesk/internal/database"
)

// migrate 只执行内嵌的 goose 迁移，适合在部署流水线中单独运行。
func main() {
	cfg := config.MustLoad()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Printf("migrations applied to %s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
}
