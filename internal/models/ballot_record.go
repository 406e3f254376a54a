package models

import (
	"time"

	"gorm.io/datatypes"
)

// BallotRecord is the audit trail of a confirmed vote: the exact ballot a
// user submitted, written in the same transaction as the tally updates.
type BallotRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Voting user.
	FormID uint64 `gorm:"not null;index"` // Voted form.

	Ballot datatypes.JSON `gorm:"not null"` // Submitted (decision, amount) entries.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Submission timestamp.
}
