package database

import (
	"fmt"
	"log"
	"studybuddy_backend/internal/config"
	"studybuddy_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并播种徽章目录，测试用的sqlite库也走同一入口
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.ActivityEvent{},
		&model.UserStreak{},
		&model.Badge{},
		&model.UserBadge{},
	)
	if err != nil {
		return err
	}

	return seedBadges(db)
}

// 默认徽章目录，已存在时不覆盖（运营可能改过文案）
func seedBadges(db *gorm.DB) error {
	var count int64
	db.Model(&model.Badge{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaults := []model.Badge{
		{Name: "First Step", Description: "Awarded for logging into the app for the first time.", ImageURL: "/badges/first-step.png", Category: "Login"},
		{Name: "Daily Learner", Description: "Login for 7 consecutive days.", ImageURL: "/badges/daily-learner.png", Category: "Login"},
		{Name: "Consistent Learner", Description: "Login for 30 consecutive days.", ImageURL: "/badges/consistent-learner.png", Category: "Login"},
		{Name: "Streak Starter", Description: "Reach a 3 day study streak.", ImageURL: "/badges/streak-starter.png", Category: "Streak"},
		{Name: "Streak Master", Description: "Reach a 10 day study streak.", ImageURL: "/badges/streak-master.png", Category: "Streak"},
		{Name: "Streak Specialist", Description: "Reach a 30 day study streak.", ImageURL: "/badges/streak-specialist.png", Category: "Streak"},
		{Name: "Summarization Star", Description: "Summarize 10 texts.", ImageURL: "/badges/summarization-star.png", Category: "Content"},
		{Name: "Knowledge Seeker", Description: "Summarize 20 texts.", ImageURL: "/badges/knowledge-seeker.png", Category: "Content"},
		{Name: "Audio Enthusiast", Description: "Upload 5 audio files.", ImageURL: "/badges/audio-enthusiast.png", Category: "Content"},
		{Name: "Audio Analyzer", Description: "Upload 15 audio files.", ImageURL: "/badges/audio-analyzer.png", Category: "Content"},
		{Name: "Document Guru", Description: "Upload 10 documents.", ImageURL: "/badges/document-guru.png", Category: "Content"},
		{Name: "Document Pro", Description: "Upload 20 documents.", ImageURL: "/badges/document-pro.png", Category: "Content"},
		{Name: "Quiz Novice", Description: "Complete 3 quizzes.", ImageURL: "/badges/quiz-novice.png", Category: "Quiz"},
		{Name: "Curious Learner", Description: "Ask 20 questions.", ImageURL: "/badges/curious-learner.png", Category: "Community"},
		{Name: "Goal Setter", Description: "Set your first goal.", ImageURL: "/badges/goal-setter.png", Category: "Goals"},
		{Name: "Goal Achiever", Description: "Complete your first goal.", ImageURL: "/badges/goal-achiever.png", Category: "Goals"},
		{Name: "Leaderboard Rookie", Description: "Enter the leaderboard.", ImageURL: "/badges/leaderboard-rookie.png", Category: "Leaderboard"},
		{Name: "Top Performer", Description: "Reach the top 10% of the leaderboard.", ImageURL: "/badges/top-performer.png", Category: "Leaderboard"},
		{Name: "Badge Collector", Description: "Earn 5 badges.", ImageURL: "/badges/badge-collector.png", Category: "Collection"},
		{Name: "Super Collector", Description: "Earn 10 badges.", ImageURL: "/badges/super-collector.png", Category: "Collection"},
		{Name: "Ultimate Learner", Description: "Earn every other badge.", ImageURL: "/badges/ultimate-learner.png", Category: "Collection"},
	}

	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
