package models

import "time"

// UserGroup bundles users so forms can be assigned to all of them at once.
type UserGroup struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name string `gorm:"type:text;not null;uniqueIndex"` // Unique group name.

	Users []User `gorm:"foreignKey:UserGroupID"` // Member users.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
