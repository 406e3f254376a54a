package voting

import (
	"errors"
	"fmt"

	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

// AssignFormToUser grants a user the right to vote on a form. Both entities
// are looked up before anything is written so a missing one causes no side
// effects. An existing assignment is rejected, not duplicated.
func AssignFormToUser(tx *gorm.DB, formID, userID uint64) (*models.UserForm, error) {
	var form models.Form
	if errFind := tx.Select("id").First(&form, formID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load form: %w", errFind)
	}
	var user models.User
	if errFind := tx.Select("id").First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load user: %w", errFind)
	}

	assigned, errCheck := assignmentExists(tx, formID, userID)
	if errCheck != nil {
		return nil, errCheck
	}
	if assigned {
		return nil, ErrAlreadyAssigned
	}

	return createAssignment(tx, formID, userID)
}

// AssignFormToGroup records the group-level assignment and fans it out to
// every current member, skipping members who already hold the form. Returns
// ErrNotFound without side effects when the form or group is missing; an
// existing group assignment is rejected, not duplicated.
func AssignFormToGroup(tx *gorm.DB, formID, groupID uint64) (*models.UserGroupForm, error) {
	var form models.Form
	if errFind := tx.Select("id").First(&form, formID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load form: %w", errFind)
	}
	var group models.UserGroup
	if errFind := tx.Preload("Users").First(&group, groupID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("voting: load group: %w", errFind)
	}

	var existing int64
	if errCount := tx.Model(&models.UserGroupForm{}).
		Where("user_group_id = ? AND form_id = ?", groupID, formID).
		Count(&existing).Error; errCount != nil {
		return nil, fmt.Errorf("voting: check group assignment: %w", errCount)
	}
	if existing > 0 {
		return nil, ErrAlreadyAssigned
	}

	groupForm := models.UserGroupForm{UserGroupID: groupID, FormID: formID}
	if errCreate := tx.Create(&groupForm).Error; errCreate != nil {
		return nil, fmt.Errorf("voting: create group assignment: %w", errCreate)
	}

	for _, member := range group.Users {
		assigned, errCheck := assignmentExists(tx, formID, member.ID)
		if errCheck != nil {
			return nil, errCheck
		}
		if assigned {
			continue
		}
		if _, errAssign := createAssignment(tx, formID, member.ID); errAssign != nil {
			return nil, errAssign
		}
	}

	return &groupForm, nil
}

// RemoveFormFromUser revokes a user's assignment. Rejects with
// ErrNotAssigned when no such row exists.
func RemoveFormFromUser(tx *gorm.DB, formID, userID uint64) error {
	res := tx.Where("user_id = ? AND form_id = ?", userID, formID).Delete(&models.UserForm{})
	if res.Error != nil {
		return fmt.Errorf("voting: delete assignment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotAssigned
	}
	return nil
}

// RemoveFormFromGroup retracts the group assignment and every member's
// individual row for that form. The retract is deliberately broad: an
// assignment is not tracked back to its origin, so a member who was also
// assigned directly loses the form too.
func RemoveFormFromGroup(tx *gorm.DB, formID, groupID uint64) error {
	var group models.UserGroup
	if errFind := tx.Preload("Users").First(&group, groupID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("voting: load group: %w", errFind)
	}

	var groupForm models.UserGroupForm
	if errFind := tx.Where("user_group_id = ? AND form_id = ?", groupID, formID).
		First(&groupForm).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("voting: load group assignment: %w", errFind)
	}

	for _, member := range group.Users {
		res := tx.Where("user_id = ? AND form_id = ?", member.ID, formID).Delete(&models.UserForm{})
		if res.Error != nil {
			return fmt.Errorf("voting: retract assignment: %w", res.Error)
		}
	}

	if errDelete := tx.Where("user_group_id = ? AND form_id = ?", groupID, formID).
		Delete(&models.UserGroupForm{}).Error; errDelete != nil {
		return fmt.Errorf("voting: delete group assignment: %w", errDelete)
	}
	return nil
}

// SyncMemberAssignments is the membership-join hook: it gives a user every
// form already assigned to the group, skipping forms the user holds.
func SyncMemberAssignments(tx *gorm.DB, userID, groupID uint64) error {
	var groupForms []models.UserGroupForm
	if errFind := tx.Where("user_group_id = ?", groupID).Find(&groupForms).Error; errFind != nil {
		return fmt.Errorf("voting: load group assignments: %w", errFind)
	}

	for _, groupForm := range groupForms {
		assigned, errCheck := assignmentExists(tx, groupForm.FormID, userID)
		if errCheck != nil {
			return errCheck
		}
		if assigned {
			continue
		}
		if _, errAssign := createAssignment(tx, groupForm.FormID, userID); errAssign != nil {
			return errAssign
		}
	}
	return nil
}

// assignmentExists reports whether a (user, form) row is present.
func assignmentExists(tx *gorm.DB, formID, userID uint64) (bool, error) {
	var count int64
	if errCount := tx.Model(&models.UserForm{}).
		Where("user_id = ? AND form_id = ?", userID, formID).
		Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("voting: check assignment: %w", errCount)
	}
	return count > 0, nil
}

// createAssignment inserts the UserForm row. The composite primary key
// turns a concurrent duplicate into a constraint error here.
func createAssignment(tx *gorm.DB, formID, userID uint64) (*models.UserForm, error) {
	userForm := models.UserForm{UserID: userID, FormID: formID, HasVoted: false}
	if errCreate := tx.Create(&userForm).Error; errCreate != nil {
		return nil, fmt.Errorf("voting: create assignment: %w", errCreate)
	}
	return &userForm, nil
}
