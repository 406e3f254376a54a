package models

import "time"

// Form is a ballot sheet with a fixed set of decision options.
type Form struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title string `gorm:"type:text;not null;uniqueIndex"` // Unique form title.

	Decisions []Decision `gorm:"foreignKey:FormID"` // Decision options, ordered by ID.
	UserForms []UserForm `gorm:"foreignKey:FormID"` // Per-user assignments.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Decision is one option of a form with its running vote tally.
// A decision never moves to another form and its tally only grows.
type Decision struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	FormID uint64 `gorm:"not null;uniqueIndex:idx_decisions_form_title"`           // Owning form.
	Title  string `gorm:"type:text;not null;uniqueIndex:idx_decisions_form_title"` // Unique within the form.

	Votes int64 `gorm:"not null;default:0"` // Accumulated vote amount.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
