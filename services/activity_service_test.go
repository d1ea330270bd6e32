package services

import (
	"testing"

	"postpilot/models"
	"postpilot/utils"
)

func TestActivityLog(t *testing.T) {
	db := setupTestDB(t)
	notifier := newRecordingNotifier()
	as := NewActivityService(db, notifier, testLogger())

	owner := createUser(t, db, "owner@example.com")
	team := createTeam(t, db, owner)

	t.Run("team events hit the webhook channel", func(t *testing.T) {
		post := createPost(t, db, owner.ID, &team.ID, models.PostStatusDraft)
		as.Log(models.ActivityPostCreate, models.ActivityStatusSuccess, owner.ID, post)

		var entry models.ActivityLog
		if err := db.Where("post_id = ?", post.ID).First(&entry).Error; err != nil {
			t.Fatalf("activity row missing: %v", err)
		}
		if entry.Action != models.ActivityPostCreate {
			t.Errorf("action = %s, want %s", entry.Action, models.ActivityPostCreate)
		}
		if len(notifier.webhooks[team.ID]) == 0 {
			t.Error("expected a webhook notification for a team event")
		}
	})

	t.Run("personal events skip the webhook channel", func(t *testing.T) {
		post := createPost(t, db, owner.ID, nil, models.PostStatusDraft)
		before := len(notifier.webhooks[team.ID])
		as.Log(models.ActivityPostUpdate, models.ActivityStatusSuccess, owner.ID, post)
		if len(notifier.webhooks[team.ID]) != before {
			t.Error("personal event produced a team webhook")
		}
	})
}

func TestGetTeamActivities(t *testing.T) {
	db := setupTestDB(t)
	notifier := newRecordingNotifier()
	as := NewActivityService(db, notifier, testLogger())

	owner := createUser(t, db, "owner@example.com")
	stranger := createUser(t, db, "stranger@example.com")
	team := createTeam(t, db, owner)

	post := createPost(t, db, owner.ID, &team.ID, models.PostStatusDraft)
	as.Log(models.ActivityPostCreate, models.ActivityStatusSuccess, owner.ID, post)
	as.Log(models.ActivityPostSubmit, models.ActivityStatusSuccess, owner.ID, post)

	t.Run("member reads the feed", func(t *testing.T) {
		entries, err := as.GetTeamActivities(team.ID, owner.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("got %d entries, want 2", len(entries))
		}
	})

	t.Run("non-member is refused", func(t *testing.T) {
		_, err := as.GetTeamActivities(team.ID, stranger.ID)
		if !utils.IsKind(err, utils.ErrorKindAuthorization) {
			t.Fatalf("got error %v, want authorization", err)
		}
	})
}
