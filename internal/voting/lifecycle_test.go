package voting

import (
	"errors"
	"testing"

	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

func TestCreateFormWithDecisions(t *testing.T) {
	conn := setupVotingDB(t)

	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")
	if len(form.Decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(form.Decisions))
	}
	for _, decision := range form.Decisions {
		if decision.FormID != form.ID {
			t.Fatalf("decision %s bound to form %d, expected %d", decision.Title, decision.FormID, form.ID)
		}
		if decision.Votes != 0 {
			t.Fatalf("expected fresh tally 0, got %d", decision.Votes)
		}
	}
}

func TestCreateFormDuplicateDecisionTitleRollsBack(t *testing.T) {
	conn := setupVotingDB(t)

	errTx := conn.Transaction(func(tx *gorm.DB) error {
		_, errCreate := CreateForm(tx, "Voting Form", []string{"Same", "Same"})
		return errCreate
	})
	if errTx == nil {
		t.Fatalf("expected duplicate decision title to fail")
	}

	var forms int64
	if errCount := conn.Model(&models.Form{}).Count(&forms).Error; errCount != nil {
		t.Fatalf("count forms: %v", errCount)
	}
	if forms != 0 {
		t.Fatalf("expected rollback to remove the form, got %d rows", forms)
	}
}

func TestDeleteFormCascades(t *testing.T) {
	conn := setupVotingDB(t)
	group := createTestGroup(t, conn, "Board")
	alice := createTestUser(t, conn, "Alice", 1)
	addToGroup(t, conn, alice, group)
	form := createTestForm(t, conn, "Budget", "Yes", "No")

	errAssign := conn.Transaction(func(tx *gorm.DB) error {
		_, err := AssignFormToGroup(tx, form.ID, group.ID)
		return err
	})
	if errAssign != nil {
		t.Fatalf("assign: %v", errAssign)
	}

	errDelete := conn.Transaction(func(tx *gorm.DB) error {
		return DeleteForm(tx, form.ID)
	})
	if errDelete != nil {
		t.Fatalf("delete form: %v", errDelete)
	}

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"decisions", &models.Decision{}},
		{"user_forms", &models.UserForm{}},
		{"user_group_forms", &models.UserGroupForm{}},
	} {
		var count int64
		if errCount := conn.Model(probe.model).Where("form_id = ?", form.ID).Count(&count).Error; errCount != nil {
			t.Fatalf("count %s: %v", probe.name, errCount)
		}
		if count != 0 {
			t.Fatalf("expected %s cascade-deleted, got %d rows", probe.name, count)
		}
	}
}

func TestDeleteUserCascadesAssignmentsKeepsTallies(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 3)
	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")

	errVote := conn.Transaction(func(tx *gorm.DB) error {
		if _, errAssign := AssignFormToUser(tx, form.ID, voter.ID); errAssign != nil {
			return errAssign
		}
		_, err := Vote(tx, voter.ID, form.ID, []BallotEntry{
			{Decision: "Decision 1", Amount: 1},
			{Decision: "Decision 2", Amount: 2},
		})
		return err
	})
	if errVote != nil {
		t.Fatalf("vote: %v", errVote)
	}

	errDelete := conn.Transaction(func(tx *gorm.DB) error {
		return DeleteUser(tx, voter.ID)
	})
	if errDelete != nil {
		t.Fatalf("delete user: %v", errDelete)
	}

	if count := assignmentCount(t, conn, "user_id = ?", voter.ID); count != 0 {
		t.Fatalf("expected assignments removed with user, got %d", count)
	}
	if votes := decisionVotes(t, conn, form.ID, "Decision 2"); votes != 2 {
		t.Fatalf("expected recorded tally to survive user deletion, got %d", votes)
	}
}

func TestDeleteUserGroupWithMembersRejected(t *testing.T) {
	conn := setupVotingDB(t)
	group := createTestGroup(t, conn, "Board")
	alice := createTestUser(t, conn, "Alice", 1)
	addToGroup(t, conn, alice, group)

	errDelete := conn.Transaction(func(tx *gorm.DB) error {
		return DeleteUserGroup(tx, group.ID)
	})
	if errDelete != ErrGroupNotEmpty {
		t.Fatalf("expected ErrGroupNotEmpty, got %v", errDelete)
	}

	var survivor models.UserGroup
	if errFind := conn.First(&survivor, group.ID).Error; errFind != nil {
		t.Fatalf("expected group to survive: %v", errFind)
	}
	var member models.User
	if errFind := conn.First(&member, alice.ID).Error; errFind != nil {
		t.Fatalf("load member: %v", errFind)
	}
	if member.UserGroupID == nil || *member.UserGroupID != group.ID {
		t.Fatalf("expected membership untouched, got %v", member.UserGroupID)
	}
}

func TestDeleteUserGroupWithoutMembersSucceeds(t *testing.T) {
	conn := setupVotingDB(t)
	group := createTestGroup(t, conn, "Board")

	errDelete := conn.Transaction(func(tx *gorm.DB) error {
		return DeleteUserGroup(tx, group.ID)
	})
	if errDelete != nil {
		t.Fatalf("delete empty group: %v", errDelete)
	}

	var count int64
	if errCount := conn.Model(&models.UserGroup{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count groups: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected group removed, got %d rows", count)
	}
}

func TestChangeUserGroupRunsJoinHook(t *testing.T) {
	conn := setupVotingDB(t)
	group := createTestGroup(t, conn, "Board")
	form := createTestForm(t, conn, "Budget", "Yes")
	mover := createTestUser(t, conn, "Mover", 1)

	errAssign := conn.Transaction(func(tx *gorm.DB) error {
		_, err := AssignFormToGroup(tx, form.ID, group.ID)
		return err
	})
	if errAssign != nil {
		t.Fatalf("group assign: %v", errAssign)
	}

	var moved *models.User
	errChange := conn.Transaction(func(tx *gorm.DB) error {
		changed, err := ChangeUserGroup(tx, mover.ID, group.ID)
		if err != nil {
			return err
		}
		moved = changed
		return nil
	})
	if errChange != nil {
		t.Fatalf("change group: %v", errChange)
	}
	if moved.UserGroupID == nil || *moved.UserGroupID != group.ID {
		t.Fatalf("expected membership updated, got %v", moved.UserGroupID)
	}

	if count := assignmentCount(t, conn, "user_id = ? AND form_id = ?", mover.ID, form.ID); count != 1 {
		t.Fatalf("expected inherited assignment, got %d rows", count)
	}
}

func TestChangeUserGroupMissingGroupRejected(t *testing.T) {
	conn := setupVotingDB(t)
	mover := createTestUser(t, conn, "Mover", 1)

	errChange := conn.Transaction(func(tx *gorm.DB) error {
		_, err := ChangeUserGroup(tx, mover.ID, 404)
		return err
	})
	if !errors.Is(errChange, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errChange)
	}
}

func TestRejectionErrorsAreRecognized(t *testing.T) {
	for _, reject := range []error{ErrNotFound, ErrNotAssigned, ErrAlreadyAssigned, ErrAlreadyVoted, ErrWeightMismatch, ErrUnknownDecision, ErrInvalidBallot, ErrGroupNotEmpty} {
		if !IsRejection(reject) {
			t.Fatalf("expected %v to be a rejection", reject)
		}
	}
	if IsRejection(errors.New("disk on fire")) {
		t.Fatalf("expected plain errors not to be rejections")
	}
	if IsRejection(nil) {
		t.Fatalf("expected nil not to be a rejection")
	}
}
