package models

import "time"

// Roles assignable to a user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a voter account holding a proxy amount.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null;uniqueIndex"` // Unique display name.
	Token    string `gorm:"type:text;not null"`             // Bearer credential, compared by equality.
	Password string `gorm:"type:text"`                      // Optional bcrypt password hash.

	Role        string `gorm:"type:text;not null;default:user"` // Either "user" or "admin".
	ProxyAmount int64  `gorm:"not null"`                        // Vote mass to allocate per ballot.

	Email *string `gorm:"type:text"` // Optional contact address.

	UserGroupID *uint64    `gorm:"index"`                  // Owning group when set.
	UserGroup   *UserGroup `gorm:"foreignKey:UserGroupID"` // Associated group record.

	UserForms []UserForm `gorm:"foreignKey:UserID"` // Form assignments.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
