package db

import (
	"log"
	"os"
	"time"
	"yatube/internal/models"
	"yatube/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database and migrates the schema.
func Init() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable"
	}

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gLogger})
	if err != nil {
		utils.Sugar.Fatalf("failed to connect to database: %v", err)
	}
	utils.Sugar.Info("database connection established")

	if err := Migrate(database); err != nil {
		utils.Sugar.Fatalf("failed to migrate database: %v", err)
	}
	utils.Sugar.Info("database migration completed")

	seedGroups(database)

	return database
}

// Migrate applies the schema for all owned entities.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
}

// seedGroups creates the initial communities. Groups are otherwise managed
// by admin tooling only.
func seedGroups(database *gorm.DB) {
	var count int64
	database.Model(&models.Group{}).Count(&count)
	if count > 0 {
		return
	}

	groups := []models.Group{
		{Title: "Technology", Slug: "tech", Description: "Posts about technology"},
		{Title: "Travel", Slug: "travel", Description: "Travel notes and photos"},
		{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen stories"},
	}

	for _, group := range groups {
		if err := database.Create(&group).Error; err != nil {
			utils.Sugar.Warnf("failed to create group %s: %v", group.Slug, err)
		}
	}
	utils.Sugar.Info("initial groups created")
}
