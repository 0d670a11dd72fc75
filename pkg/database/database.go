package database

import (
	"fmt"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)

	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	logger.Log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.DBName))
	return db, nil
}

// AutoMigrate 迁移全部表结构并补种默认分类
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Profile{},
		&model.Category{},
		&model.Course{},
		&model.CourseInstructor{},
		&model.CourseModule{},
		&model.Chapter{},
		&model.Attachment{},
		&model.Purchase{},
		&model.UserProgress{},
		&model.CourseMessage{},
		&model.StudentLastRead{},
		&model.MentorLastRead{},
		&model.Lead{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	if err := seedCategories(db); err != nil {
		return err
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// seedCategories 幂等补种默认课程分类
func seedCategories(db *gorm.DB) error {
	names := []string{
		"Computer Science",
		"Music",
		"Fitness",
		"Photography",
		"Accounting",
		"Engineering",
		"Filming",
	}
	for _, name := range names {
		var category model.Category
		err := db.Where("name = ?", name).
			Attrs(model.Category{Name: name}).
			FirstOrCreate(&category).Error
		if err != nil {
			return fmt.Errorf("seed category %q failed: %w", name, err)
		}
	}
	return nil
}
