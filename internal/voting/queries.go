package voting

import (
	"fmt"

	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

// FormsForUser returns the forms assigned to a user, decisions preloaded.
// With onlyUnvoted set, forms the user already voted on are filtered out.
func FormsForUser(tx *gorm.DB, userID uint64, onlyUnvoted bool) ([]models.Form, error) {
	query := tx.Where("user_id = ?", userID)
	if onlyUnvoted {
		query = query.Where("has_voted = ?", false)
	}
	var userForms []models.UserForm
	if errFind := query.Order("form_id ASC").Find(&userForms).Error; errFind != nil {
		return nil, fmt.Errorf("voting: load assignments: %w", errFind)
	}
	if len(userForms) == 0 {
		return []models.Form{}, nil
	}

	formIDs := make([]uint64, 0, len(userForms))
	for _, userForm := range userForms {
		formIDs = append(formIDs, userForm.FormID)
	}

	var forms []models.Form
	if errFind := tx.Preload("Decisions", func(db *gorm.DB) *gorm.DB {
		return db.Order("decisions.id ASC")
	}).Where("id IN ?", formIDs).Order("id ASC").Find(&forms).Error; errFind != nil {
		return nil, fmt.Errorf("voting: load forms: %w", errFind)
	}
	return forms, nil
}
