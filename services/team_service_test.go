package services

import (
	"testing"

	"postpilot/models"
	"postpilot/utils"
)

func TestCreateTeam(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTeamService(db, testLogger())
	owner := createUser(t, db, "owner@example.com")

	t.Run("creator becomes owner", func(t *testing.T) {
		team, err := ts.CreateTeam(owner.ID, CreateTeamInput{Name: "  Marketing  "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if team.Name != "Marketing" {
			t.Errorf("name = %q, want trimmed %q", team.Name, "Marketing")
		}

		var member models.TeamMember
		if err := db.Where("team_id = ? AND user_id = ?", team.ID, owner.ID).
			First(&member).Error; err != nil {
			t.Fatalf("owner membership missing: %v", err)
		}
		if member.Role != models.TeamRoleOwner {
			t.Errorf("role = %s, want %s", member.Role, models.TeamRoleOwner)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := ts.CreateTeam(owner.ID, CreateTeamInput{Name: "   "})
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("got error %v, want validation", err)
		}
	})
}

func TestGetTeams(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTeamService(db, testLogger())
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	team := createTeam(t, db, owner)
	addMember(t, db, team.ID, member.ID, models.TeamRoleMember)

	for _, userID := range []uint{owner.ID, member.ID} {
		teams, err := ts.GetTeams(userID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(teams) != 1 || teams[0].ID != team.ID {
			t.Errorf("user %d teams = %v, want [%d]", userID, teams, team.ID)
		}
	}

	teams, err := ts.GetTeams(stranger.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 0 {
		t.Errorf("stranger sees %d teams, want 0", len(teams))
	}
}

func TestAddMember(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTeamService(db, testLogger())
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	recruit := createUser(t, db, "recruit@example.com")

	team := createTeam(t, db, owner)
	addMember(t, db, team.ID, member.ID, models.TeamRoleMember)

	t.Run("invalid role", func(t *testing.T) {
		_, err := ts.AddMember(team.ID, owner.ID, AddMemberInput{UserID: recruit.ID, Role: "OWNER"})
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("got error %v, want validation", err)
		}
	})

	t.Run("regular member cannot add", func(t *testing.T) {
		_, err := ts.AddMember(team.ID, member.ID, AddMemberInput{UserID: recruit.ID, Role: models.TeamRoleViewer})
		if !utils.IsKind(err, utils.ErrorKindAuthorization) {
			t.Fatalf("got error %v, want authorization", err)
		}
	})

	t.Run("missing team", func(t *testing.T) {
		_, err := ts.AddMember(99999, owner.ID, AddMemberInput{UserID: recruit.ID, Role: models.TeamRoleMember})
		if !utils.IsKind(err, utils.ErrorKindNotFound) {
			t.Fatalf("got error %v, want not found", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := ts.AddMember(team.ID, owner.ID, AddMemberInput{UserID: 99999, Role: models.TeamRoleMember})
		if !utils.IsKind(err, utils.ErrorKindNotFound) {
			t.Fatalf("got error %v, want not found", err)
		}
	})

	t.Run("owner adds a member", func(t *testing.T) {
		got, err := ts.AddMember(team.ID, owner.ID, AddMemberInput{UserID: recruit.ID, Role: models.TeamRoleAdmin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Role != models.TeamRoleAdmin {
			t.Errorf("role = %s, want %s", got.Role, models.TeamRoleAdmin)
		}
		if got.User.ID != recruit.ID {
			t.Errorf("user = %d, want %d", got.User.ID, recruit.ID)
		}
	})

	t.Run("duplicate membership", func(t *testing.T) {
		_, err := ts.AddMember(team.ID, owner.ID, AddMemberInput{UserID: recruit.ID, Role: models.TeamRoleMember})
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("got error %v, want validation", err)
		}
	})
}

func TestRemoveMember(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTeamService(db, testLogger())
	owner := createUser(t, db, "owner@example.com")
	admin := createUser(t, db, "admin@example.com")
	member := createUser(t, db, "member@example.com")

	team := createTeam(t, db, owner)
	addMember(t, db, team.ID, admin.ID, models.TeamRoleAdmin)
	addMember(t, db, team.ID, member.ID, models.TeamRoleMember)

	t.Run("regular member cannot remove", func(t *testing.T) {
		err := ts.RemoveMember(team.ID, member.ID, admin.ID)
		if !utils.IsKind(err, utils.ErrorKindAuthorization) {
			t.Fatalf("got error %v, want authorization", err)
		}
	})

	t.Run("owner membership is protected", func(t *testing.T) {
		err := ts.RemoveMember(team.ID, admin.ID, owner.ID)
		if !utils.IsKind(err, utils.ErrorKindValidation) {
			t.Fatalf("got error %v, want validation", err)
		}
	})

	t.Run("not a member", func(t *testing.T) {
		outsider := createUser(t, db, "outsider@example.com")
		err := ts.RemoveMember(team.ID, owner.ID, outsider.ID)
		if !utils.IsKind(err, utils.ErrorKindNotFound) {
			t.Fatalf("got error %v, want not found", err)
		}
	})

	t.Run("admin removes a member", func(t *testing.T) {
		if err := ts.RemoveMember(team.ID, admin.ID, member.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var count int64
		db.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", team.ID, member.ID).
			Count(&count)
		if count != 0 {
			t.Errorf("membership still present after removal")
		}
	})
}

func TestSocialAccounts(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTeamService(db, testLogger())
	owner := createUser(t, db, "owner@example.com")
	viewer := createUser(t, db, "viewer@example.com")
	stranger := createUser(t, db, "stranger@example.com")

	team := createTeam(t, db, owner)
	addMember(t, db, team.ID, viewer.ID, models.TeamRoleViewer)

	input := AddSocialAccountInput{Platform: "Twitter", Username: "acme", Token: "secret-token"}

	t.Run("viewer cannot link accounts", func(t *testing.T) {
		_, err := ts.AddSocialAccount(team.ID, viewer.ID, input)
		if !utils.IsKind(err, utils.ErrorKindAuthorization) {
			t.Fatalf("got error %v, want authorization", err)
		}
	})

	t.Run("owner links an account", func(t *testing.T) {
		got, err := ts.AddSocialAccount(team.ID, owner.ID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Platform != "twitter" {
			t.Errorf("platform = %q, want lowercased %q", got.Platform, "twitter")
		}
		if got.Token != "" {
			t.Error("token leaked through the sanitized response")
		}

		var stored models.SocialAccount
		if err := db.First(&stored, got.ID).Error; err != nil {
			t.Fatalf("stored account missing: %v", err)
		}
		if stored.Token != "secret-token" {
			t.Errorf("stored token = %q, want original", stored.Token)
		}
	})

	t.Run("listing sanitizes every account", func(t *testing.T) {
		accounts, err := ts.GetSocialAccounts(team.ID, viewer.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) == 0 {
			t.Fatal("expected at least one account")
		}
		for _, a := range accounts {
			if a.Token != "" {
				t.Errorf("account %d token leaked", a.ID)
			}
		}
	})

	t.Run("non-member cannot list", func(t *testing.T) {
		_, err := ts.GetSocialAccounts(team.ID, stranger.ID)
		if !utils.IsKind(err, utils.ErrorKindAuthorization) {
			t.Fatalf("got error %v, want authorization", err)
		}
	})
}
