package db

import (
	"fmt"

	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted entity.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.UserGroup{},
		&models.User{},
		&models.Form{},
		&models.Decision{},
		&models.UserForm{},
		&models.UserGroupForm{},
		&models.BallotRecord{},
	)
}
