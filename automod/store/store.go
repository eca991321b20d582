package store

import (
	"github.com/commentguard/commentguard/models"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Content{},
		&models.Comment{},
		&models.PluginOption{},
	)
}
