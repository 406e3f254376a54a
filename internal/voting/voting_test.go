package voting

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	dbpkg "github.com/proxyvote-app/proxyvote/internal/db"
	"github.com/proxyvote-app/proxyvote/internal/models"
	"gorm.io/gorm"
)

func setupVotingDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:voting_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func createTestUser(t *testing.T, conn *gorm.DB, name string, proxyAmount int64) *models.User {
	t.Helper()
	user := models.User{Name: name, Token: "token-" + name, Role: models.RoleUser, ProxyAmount: proxyAmount}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user %s: %v", name, errCreate)
	}
	return &user
}

func createTestGroup(t *testing.T, conn *gorm.DB, name string) *models.UserGroup {
	t.Helper()
	group := models.UserGroup{Name: name}
	if errCreate := conn.Create(&group).Error; errCreate != nil {
		t.Fatalf("create group %s: %v", name, errCreate)
	}
	return &group
}

func addToGroup(t *testing.T, conn *gorm.DB, user *models.User, group *models.UserGroup) {
	t.Helper()
	if errUpdate := conn.Model(user).Update("user_group_id", group.ID).Error; errUpdate != nil {
		t.Fatalf("add %s to group: %v", user.Name, errUpdate)
	}
}

func createTestForm(t *testing.T, conn *gorm.DB, title string, decisions ...string) *models.Form {
	t.Helper()
	var form *models.Form
	errTx := conn.Transaction(func(tx *gorm.DB) error {
		created, errCreate := CreateForm(tx, title, decisions)
		if errCreate != nil {
			return errCreate
		}
		form = created
		return nil
	})
	if errTx != nil {
		t.Fatalf("create form %s: %v", title, errTx)
	}
	return form
}

func decisionVotes(t *testing.T, conn *gorm.DB, formID uint64, title string) int64 {
	t.Helper()
	var decision models.Decision
	if errFind := conn.Where("form_id = ? AND title = ?", formID, title).First(&decision).Error; errFind != nil {
		t.Fatalf("load decision %s: %v", title, errFind)
	}
	return decision.Votes
}

func assignmentCount(t *testing.T, conn *gorm.DB, where string, args ...any) int64 {
	t.Helper()
	var count int64
	if errCount := conn.Model(&models.UserForm{}).Where(where, args...).Count(&count).Error; errCount != nil {
		t.Fatalf("count assignments: %v", errCount)
	}
	return count
}

func TestVoteSpendsFullProxyAmount(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 3)
	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")

	errTx := conn.Transaction(func(tx *gorm.DB) error {
		if _, errAssign := AssignFormToUser(tx, form.ID, voter.ID); errAssign != nil {
			return errAssign
		}
		decisions, errVote := Vote(tx, voter.ID, form.ID, []BallotEntry{
			{Decision: "Decision 1", Amount: 1},
			{Decision: "Decision 2", Amount: 2},
		})
		if errVote != nil {
			return errVote
		}
		if len(decisions) != 2 {
			t.Fatalf("expected 2 decisions back, got %d", len(decisions))
		}
		return nil
	})
	if errTx != nil {
		t.Fatalf("vote: %v", errTx)
	}

	if votes := decisionVotes(t, conn, form.ID, "Decision 1"); votes != 1 {
		t.Fatalf("expected Decision 1 tally 1, got %d", votes)
	}
	if votes := decisionVotes(t, conn, form.ID, "Decision 2"); votes != 2 {
		t.Fatalf("expected Decision 2 tally 2, got %d", votes)
	}

	voted, assigned, errVoted := HasUserVoted(conn, voter.ID, form.ID)
	if errVoted != nil {
		t.Fatalf("has voted: %v", errVoted)
	}
	if !assigned || !voted {
		t.Fatalf("expected assigned and voted, got assigned=%v voted=%v", assigned, voted)
	}

	var records int64
	if errCount := conn.Model(&models.BallotRecord{}).Where("user_id = ? AND form_id = ?", voter.ID, form.ID).Count(&records).Error; errCount != nil {
		t.Fatalf("count ballot records: %v", errCount)
	}
	if records != 1 {
		t.Fatalf("expected 1 ballot record, got %d", records)
	}
}

func TestVoteSecondBallotRejected(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 3)
	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")

	errFirst := conn.Transaction(func(tx *gorm.DB) error {
		if _, errAssign := AssignFormToUser(tx, form.ID, voter.ID); errAssign != nil {
			return errAssign
		}
		_, errVote := Vote(tx, voter.ID, form.ID, []BallotEntry{
			{Decision: "Decision 1", Amount: 1},
			{Decision: "Decision 2", Amount: 2},
		})
		return errVote
	})
	if errFirst != nil {
		t.Fatalf("first vote: %v", errFirst)
	}

	errSecond := conn.Transaction(func(tx *gorm.DB) error {
		_, errVote := Vote(tx, voter.ID, form.ID, []BallotEntry{{Decision: "Decision 1", Amount: 3}})
		return errVote
	})
	if errSecond != ErrAlreadyVoted {
		t.Fatalf("expected ErrAlreadyVoted, got %v", errSecond)
	}

	if votes := decisionVotes(t, conn, form.ID, "Decision 1"); votes != 1 {
		t.Fatalf("expected Decision 1 tally unchanged at 1, got %d", votes)
	}
}

func TestVoteWeightMismatchRejectedBeforeMutation(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 2)
	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")

	errTx := conn.Transaction(func(tx *gorm.DB) error {
		if _, errAssign := AssignFormToUser(tx, form.ID, voter.ID); errAssign != nil {
			return errAssign
		}
		return nil
	})
	if errTx != nil {
		t.Fatalf("assign: %v", errTx)
	}

	errVote := conn.Transaction(func(tx *gorm.DB) error {
		_, err := Vote(tx, voter.ID, form.ID, []BallotEntry{
			{Decision: "Decision 1", Amount: 1},
			{Decision: "Decision 2", Amount: 2},
		})
		return err
	})
	if errVote != ErrWeightMismatch {
		t.Fatalf("expected ErrWeightMismatch, got %v", errVote)
	}

	if votes := decisionVotes(t, conn, form.ID, "Decision 1"); votes != 0 {
		t.Fatalf("expected Decision 1 tally 0, got %d", votes)
	}
	if votes := decisionVotes(t, conn, form.ID, "Decision 2"); votes != 0 {
		t.Fatalf("expected Decision 2 tally 0, got %d", votes)
	}
	voted, assigned, _ := HasUserVoted(conn, voter.ID, form.ID)
	if !assigned || voted {
		t.Fatalf("expected assigned and unvoted, got assigned=%v voted=%v", assigned, voted)
	}
	var records int64
	if errCount := conn.Model(&models.BallotRecord{}).Count(&records).Error; errCount != nil {
		t.Fatalf("count ballot records: %v", errCount)
	}
	if records != 0 {
		t.Fatalf("expected no ballot record after rejection, got %d", records)
	}
}

func TestVoteWithoutAssignmentRejected(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 1)
	form := createTestForm(t, conn, "Voting Form", "Decision 1")

	errVote := conn.Transaction(func(tx *gorm.DB) error {
		_, err := Vote(tx, voter.ID, form.ID, []BallotEntry{{Decision: "Decision 1", Amount: 1}})
		return err
	})
	if errVote != ErrNotAssigned {
		t.Fatalf("expected ErrNotAssigned, got %v", errVote)
	}
}

func TestVoteUnknownDecisionRollsBackEverything(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 3)
	form := createTestForm(t, conn, "Voting Form", "Decision 1", "Decision 2")

	errTx := conn.Transaction(func(tx *gorm.DB) error {
		_, errAssign := AssignFormToUser(tx, form.ID, voter.ID)
		return errAssign
	})
	if errTx != nil {
		t.Fatalf("assign: %v", errTx)
	}

	errVote := conn.Transaction(func(tx *gorm.DB) error {
		_, err := Vote(tx, voter.ID, form.ID, []BallotEntry{
			{Decision: "Decision 1", Amount: 1},
			{Decision: "No Such Decision", Amount: 2},
		})
		return err
	})
	if errVote != ErrUnknownDecision {
		t.Fatalf("expected ErrUnknownDecision, got %v", errVote)
	}

	if votes := decisionVotes(t, conn, form.ID, "Decision 1"); votes != 0 {
		t.Fatalf("expected rollback to keep Decision 1 at 0, got %d", votes)
	}
	voted, _, _ := HasUserVoted(conn, voter.ID, form.ID)
	if voted {
		t.Fatalf("expected hasVoted to stay false after rollback")
	}
}

func TestVoteInvalidBallotEntries(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 2)
	form := createTestForm(t, conn, "Voting Form", "Decision 1")

	errTx := conn.Transaction(func(tx *gorm.DB) error {
		_, errAssign := AssignFormToUser(tx, form.ID, voter.ID)
		return errAssign
	})
	if errTx != nil {
		t.Fatalf("assign: %v", errTx)
	}

	cases := []struct {
		name   string
		ballot []BallotEntry
	}{
		{"empty", nil},
		{"negative amount", []BallotEntry{{Decision: "Decision 1", Amount: -1}}},
		{"duplicate decision", []BallotEntry{{Decision: "Decision 1", Amount: 1}, {Decision: "Decision 1", Amount: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errVote := conn.Transaction(func(tx *gorm.DB) error {
				_, err := Vote(tx, voter.ID, form.ID, tc.ballot)
				return err
			})
			if errVote != ErrInvalidBallot {
				t.Fatalf("expected ErrInvalidBallot, got %v", errVote)
			}
		})
	}
}

func TestHasUserVotedUnassignedPair(t *testing.T) {
	conn := setupVotingDB(t)
	voter := createTestUser(t, conn, "Voter1", 1)
	form := createTestForm(t, conn, "Voting Form", "Decision 1")

	voted, assigned, errVoted := HasUserVoted(conn, voter.ID, form.ID)
	if errVoted != nil {
		t.Fatalf("has voted: %v", errVoted)
	}
	if assigned || voted {
		t.Fatalf("expected unassigned pair, got assigned=%v voted=%v", assigned, voted)
	}
}
