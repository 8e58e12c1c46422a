package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zaqqye/seb_proctor/internal/config"
	"github.com/zaqqye/seb_proctor/internal/models"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if cfg.Production() {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	return gorm.Open(postgres.Open(DSN(cfg)), gcfg)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ExamRecord{})
}
