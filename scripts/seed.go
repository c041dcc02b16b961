//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/pkg/config"
	"github.com/hugh/rally/pkg/util"
	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

var channels = []models.Channel{
	{Name: "Lucid", BgColor: "#e94a40"},
	{Name: "Routing", BgColor: "#4a90e2"},
	{Name: "Cookies & Sessions", BgColor: "#f5a623"},
	{Name: "FAQ", BgColor: "#7ed321"},
	{Name: "Authentication", BgColor: "#9013fe"},
	{Name: "Ace", BgColor: "#50e3c2"},
	{Name: "General", BgColor: "#8b572a"},
	{Name: "Views & Templates", BgColor: "#bd10e0"},
	{Name: "Error Handling", BgColor: "#d0021b"},
	{Name: "Database", BgColor: "#417505"},
	{Name: "Redis", BgColor: "#d82c20"},
	{Name: "Mail", BgColor: "#f8e71c"},
	{Name: "Service Providers", BgColor: "#4a4a4a"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)
	ctx := context.Background()

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(ctx, db, logger); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var count int64
	db.Model(&models.Channel{}).Count(&count)
	if count == 0 {
		if err := db.Create(&channels).Error; err != nil {
			log.Fatalf("failed to seed channels: %v", err)
		}
		fmt.Printf("Seeded %d channels\n", len(channels))
	} else {
		fmt.Printf("Channels already present (%d), skipping\n", count)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" {
		email = "admin@rally.com"
	}
	if password == "" {
		password = "secret"
	}

	digest, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin := models.User{
		Email:     email,
		Password:  digest,
		Firstname: "Rally",
		Lastname:  "Admin",
		Status:    models.UserStatusActive,
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin)
	if result.Error != nil {
		log.Fatalf("failed to create admin user: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", admin.Email)
}
