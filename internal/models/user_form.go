package models

import "time"

// UserForm records that a user may vote on a form. The composite primary
// key makes duplicate assignments a constraint violation under concurrent
// fan-out instead of a silent double row.
type UserForm struct {
	UserID uint64 `gorm:"primaryKey;autoIncrement:false"` // Assigned user.
	FormID uint64 `gorm:"primaryKey;autoIncrement:false"` // Assigned form.

	HasVoted bool `gorm:"not null;default:false"` // Flips to true exactly once.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// UserGroupForm records a group-level form assignment. It is the origin
// that fans out individual UserForm rows to every member.
type UserGroupForm struct {
	UserGroupID uint64 `gorm:"primaryKey;autoIncrement:false"` // Assigned group.
	FormID      uint64 `gorm:"primaryKey;autoIncrement:false"` // Assigned form.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
