package database

import (
	"fmt"
	"log"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 建表并写入默认数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Composition{},
		&model.Skilltree{},
		&model.Skill{},
		&model.SkillCompletion{},
		&model.EvaluationModel{},
		&model.Evaluation{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migration completed")

	// 默认管理员账号
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		db.Create(&model.User{
			Name:     "admin",
			Email:    "admin@skilltree.local",
			Password: string(hashed),
			Role:     model.Admin,
		})
	}

	// 默认评分模型
	var emCount int64
	db.Model(&model.EvaluationModel{}).Count(&emCount)
	if emCount == 0 {
		defaults := []model.EvaluationModel{
			{Title: "1-10", Type: model.EvaluationNumerical, Minimum: 1, Maximum: 10, PassLevel: 6, RepeatOption: true},
			{Title: "Percentage", Type: model.EvaluationPercentage, Minimum: 0, Maximum: 100, PassLevel: 55},
			{Title: "A-F", Type: model.EvaluationLetter, Options: model.EvaluationOptions{
				{Letter: "A", Description: "Excellent", Color: "#2e7d32", Value: 4, Minimum: 3.5, Maximum: 4, ValuePasses: true},
				{Letter: "B", Description: "Good", Color: "#558b2f", Value: 3, Minimum: 2.5, Maximum: 3.49, ValuePasses: true},
				{Letter: "C", Description: "Sufficient", Color: "#f9a825", Value: 2, Minimum: 1.5, Maximum: 2.49, ValuePasses: true},
				{Letter: "D", Description: "Insufficient", Color: "#ef6c00", Value: 1, Minimum: 0.5, Maximum: 1.49},
				{Letter: "F", Description: "Fail", Color: "#c62828", Value: 0, Minimum: 0, Maximum: 0.49},
			}},
		}
		for _, m := range defaults {
			db.Create(&m)
		}
	}

	return nil
}
