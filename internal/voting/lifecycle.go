package voting

import (
	"errors"
	"fmt"

	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

// CreateForm creates a form together with its decision options.
func CreateForm(tx *gorm.DB, title string, decisionTitles []string) (*models.Form, error) {
	form := models.Form{Title: title}
	if errCreate := tx.Create(&form).Error; errCreate != nil {
		return nil, fmt.Errorf("voting: create form: %w", errCreate)
	}

	for _, decisionTitle := range decisionTitles {
		decision := models.Decision{FormID: form.ID, Title: decisionTitle}
		if errCreate := tx.Create(&decision).Error; errCreate != nil {
			return nil, fmt.Errorf("voting: create decision: %w", errCreate)
		}
		form.Decisions = append(form.Decisions, decision)
	}
	return &form, nil
}

// DeleteForm removes a form and cascades to its decisions, all assignment
// rows, and its ballot records.
func DeleteForm(tx *gorm.DB, formID uint64) error {
	var form models.Form
	if errFind := tx.Select("id").First(&form, formID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("voting: load form: %w", errFind)
	}

	if errDelete := tx.Where("form_id = ?", formID).Delete(&models.UserForm{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete assignments: %w", errDelete)
	}
	if errDelete := tx.Where("form_id = ?", formID).Delete(&models.UserGroupForm{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete group assignments: %w", errDelete)
	}
	if errDelete := tx.Where("form_id = ?", formID).Delete(&models.Decision{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete decisions: %w", errDelete)
	}
	if errDelete := tx.Where("form_id = ?", formID).Delete(&models.BallotRecord{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete ballot records: %w", errDelete)
	}
	if errDelete := tx.Delete(&models.Form{}, formID).Error; errDelete != nil {
		return fmt.Errorf("voting: delete form: %w", errDelete)
	}
	return nil
}

// DeleteUser removes a user and cascades to its assignments and ballot
// records. Decision tallies from votes already cast stay untouched.
func DeleteUser(tx *gorm.DB, userID uint64) error {
	var user models.User
	if errFind := tx.Select("id").First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("voting: load user: %w", errFind)
	}

	if errDelete := tx.Where("user_id = ?", userID).Delete(&models.UserForm{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete assignments: %w", errDelete)
	}
	if errDelete := tx.Where("user_id = ?", userID).Delete(&models.BallotRecord{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete ballot records: %w", errDelete)
	}
	if errDelete := tx.Delete(&models.User{}, userID).Error; errDelete != nil {
		return fmt.Errorf("voting: delete user: %w", errDelete)
	}
	return nil
}

// DeleteUserGroup deletes a group only when it has no members left. A group
// with members is a rejection that leaves the group, its members, and all
// assignments unchanged.
func DeleteUserGroup(tx *gorm.DB, groupID uint64) error {
	var group models.UserGroup
	if errFind := tx.Select("id").First(&group, groupID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("voting: load group: %w", errFind)
	}

	var memberCount int64
	if errCount := tx.Model(&models.User{}).
		Where("user_group_id = ?", groupID).
		Count(&memberCount).Error; errCount != nil {
		return fmt.Errorf("voting: count members: %w", errCount)
	}
	if memberCount > 0 {
		return ErrGroupNotEmpty
	}

	if errDelete := tx.Where("user_group_id = ?", groupID).Delete(&models.UserGroupForm{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete group assignments: %w", errDelete)
	}
	if errDelete := tx.Delete(&models.UserGroup{}, groupID).Error; errDelete != nil {
		return fmt.Errorf("voting: delete group: %w", errDelete)
	}
	return nil
}

// ChangeUserGroup moves a user into a group and inherits every form the
// group already holds via the membership-join hook.
func ChangeUserGroup(tx *gorm.DB, userID, groupID uint64) (*models.User, error) {
	var group models.UserGroup
	if errFind := tx.Select("id").First(&group, groupID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load group: %w", errFind)
	}
	var user models.User
	if errFind := tx.First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load user: %w", errFind)
	}

	if errUpdate := tx.Model(&user).Update("user_group_id", groupID).Error; errUpdate != nil {
		return nil, fmt.Errorf("voting: change group: %w", errUpdate)
	}
	if errSync := SyncMemberAssignments(tx, userID, groupID); errSync != nil {
		return nil, errSync
	}

	user.UserGroupID = &groupID
	return &user, nil
}
