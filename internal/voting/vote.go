package voting

import (
	"encoding/json"
	"errors"
	"fmt"

	dbutil "github.com/proxyvote-app/proxyvote/internal/db"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BallotEntry is one (decision, amount) pair of a submitted ballot.
type BallotEntry struct {
	Decision string `json:"decision"`
	Amount   int64  `json:"amount"`
}

// Vote applies one ballot for one user on one form inside the caller's
// transaction. Preconditions are checked in order before any mutation:
// the assignment must exist, must not be voted yet, and the ballot total
// must equal the user's current proxy amount. On success the assignment is
// marked voted, every referenced decision tally grows by its amount, and a
// ballot record is written; all of it commits or none of it does.
func Vote(tx *gorm.DB, userID, formID uint64, ballot []BallotEntry) ([]models.Decision, error) {
	userForm, errLoad := lockAssignment(tx, userID, formID)
	if errLoad != nil {
		return nil, errLoad
	}
	if userForm.HasVoted {
		return nil, ErrAlreadyVoted
	}

	if len(ballot) == 0 {
		return nil, ErrInvalidBallot
	}
	var total int64
	seen := make(map[string]struct{}, len(ballot))
	for _, entry := range ballot {
		if entry.Amount < 0 {
			return nil, ErrInvalidBallot
		}
		if _, dup := seen[entry.Decision]; dup {
			return nil, ErrInvalidBallot
		}
		seen[entry.Decision] = struct{}{}
		total += entry.Amount
	}

	var user models.User
	if errFind := tx.Select("id", "proxy_amount").First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load user: %w", errFind)
	}
	if total != user.ProxyAmount {
		return nil, ErrWeightMismatch
	}

	// Resolve every decision before mutating any tally.
	decisions := make([]models.Decision, 0, len(ballot))
	for _, entry := range ballot {
		var decision models.Decision
		if errFind := tx.Where("form_id = ? AND title = ?", formID, entry.Decision).
			First(&decision).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownDecision
			}
			return nil, fmt.Errorf("voting: load decision: %w", errFind)
		}
		decisions = append(decisions, decision)
	}

	if errMark := tx.Model(&models.UserForm{}).
		Where("user_id = ? AND form_id = ?", userID, formID).
		Update("has_voted", true).Error; errMark != nil {
		return nil, fmt.Errorf("voting: mark voted: %w", errMark)
	}

	for i, entry := range ballot {
		if errBump := tx.Model(&models.Decision{}).
			Where("id = ?", decisions[i].ID).
			Update("votes", gorm.Expr("votes + ?", entry.Amount)).Error; errBump != nil {
			return nil, fmt.Errorf("voting: increment tally: %w", errBump)
		}
		decisions[i].Votes += entry.Amount
	}

	ballotJSON, errMarshal := json.Marshal(ballot)
	if errMarshal != nil {
		return nil, fmt.Errorf("voting: marshal ballot: %w", errMarshal)
	}
	record := models.BallotRecord{
		UserID: userID,
		FormID: formID,
		Ballot: datatypes.JSON(ballotJSON),
	}
	if errCreate := tx.Create(&record).Error; errCreate != nil {
		return nil, fmt.Errorf("voting: record ballot: %w", errCreate)
	}

	return decisions, nil
}

// HasUserVoted is a pure read of the hasVoted flag. assigned is false when
// the (user, form) pair holds no assignment, in which case voted carries no
// meaning.
func HasUserVoted(tx *gorm.DB, userID, formID uint64) (voted bool, assigned bool, err error) {
	var userForm models.UserForm
	if errFind := tx.Where("user_id = ? AND form_id = ?", userID, formID).
		First(&userForm).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("voting: load assignment: %w", errFind)
	}
	return userForm.HasVoted, true, nil
}

// lockAssignment loads the UserForm row, holding a row lock on dialects
// that support SELECT ... FOR UPDATE so concurrent ballots serialize on
// the hasVoted check. SQLite transactions already serialize writers.
func lockAssignment(tx *gorm.DB, userID, formID uint64) (*models.UserForm, error) {
	query := tx
	if !dbutil.IsSQLite(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var userForm models.UserForm
	if errFind := query.Where("user_id = ? AND form_id = ?", userID, formID).
		First(&userForm).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotAssigned
		}
		return nil, fmt.Errorf("voting: load assignment: %w", errFind)
	}
	return &userForm, nil
}
