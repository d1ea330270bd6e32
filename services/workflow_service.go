package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/utils"
)

// WorkflowService owns the post status state machine and the authorization
// rules gating every transition. All status writes in the system go through
// this service or PostService; handlers never touch the status column.
//
// Status transitions:
//
//	DRAFT/REJECTED --submit--> PENDING --approve--> APPROVED (or SCHEDULED
//	when a schedule time is attached) / --reject--> REJECTED
//
// SCHEDULED and APPROVED posts are picked up by an external publisher which
// moves them to PUBLISHED; that publisher is not part of this service.
type WorkflowService struct {
	DB       *gorm.DB
	Notifier Notifier
	Activity *ActivityService
	Logger   *logrus.Logger
}

func NewWorkflowService(db *gorm.DB, notifier Notifier, activity *ActivityService, logger *logrus.Logger) *WorkflowService {
	return &WorkflowService{
		DB:       db,
		Notifier: notifier,
		Activity: activity,
		Logger:   logger,
	}
}

// canEdit is the shared update/delete predicate: the post owner, or any
// member of the post's team whose role is not VIEWER.
func canEdit(post *models.Post, member *models.TeamMember, callerID uint) bool {
	if post.UserID == callerID {
		return true
	}
	return member != nil && member.Role != models.TeamRoleViewer
}

// canModerate is the approve/reject predicate: team ADMIN or OWNER. A post
// without a team has no membership to satisfy this, so personal posts can
// never be moderated.
func canModerate(member *models.TeamMember) bool {
	return member != nil &&
		(member.Role == models.TeamRoleAdmin || member.Role == models.TeamRoleOwner)
}

// findMembership returns the caller's membership in teamID, or nil when the
// caller is not a member.
func findMembership(db *gorm.DB, teamID, userID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	err := db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &member, nil
}

func loadPost(db *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	err := db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &post, nil
}

// SubmitForReview moves a DRAFT or REJECTED post into PENDING. Only the
// post owner may submit; rejected posts re-enter review this way.
func (ws *WorkflowService) SubmitForReview(postID, callerID uint) (*models.Post, error) {
	post, err := loadPost(ws.DB, postID)
	if err != nil {
		return nil, err
	}

	if post.UserID != callerID {
		return nil, utils.NewAuthorizationError("Not authorized to submit this post")
	}

	switch post.Status {
	case models.PostStatusDraft, models.PostStatusRejected:
		// eligible
	case models.PostStatusPending:
		return nil, utils.NewValidationError("Post is already awaiting review")
	default:
		return nil, utils.NewValidationError(
			fmt.Sprintf("Cannot submit a %s post for review", post.Status))
	}

	if err := ws.transition(post, models.PostStatusPending); err != nil {
		return nil, err
	}

	ws.Activity.Log(models.ActivityPostSubmit, models.ActivityStatusSuccess, callerID, post)
	return post, nil
}

// Approve moves a post to APPROVED, or straight to SCHEDULED when a schedule
// time is attached. Only ADMIN/OWNER members of the post's team may approve.
func (ws *WorkflowService) Approve(postID, callerID uint) (*models.Post, error) {
	post, err := ws.checkModerationPermission(postID, callerID)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusPublished {
		return nil, utils.NewValidationError("Cannot approve a published post")
	}

	next := models.PostStatusApproved
	if post.ScheduledAt != nil {
		next = models.PostStatusScheduled
	}

	if err := ws.transition(post, next); err != nil {
		return nil, err
	}

	ws.Activity.Log(models.ActivityPostApprove, models.ActivityStatusSuccess, callerID, post)
	ws.notifyReviewOutcome(post, true)
	return post, nil
}

// Reject moves a post to REJECTED. Same authorization as Approve; rejecting
// an already rejected or published post is a guard failure.
func (ws *WorkflowService) Reject(postID, callerID uint) (*models.Post, error) {
	post, err := ws.checkModerationPermission(postID, callerID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case models.PostStatusRejected:
		return nil, utils.NewValidationError("Post is already rejected")
	case models.PostStatusPublished:
		return nil, utils.NewValidationError("Cannot reject a published post")
	}

	if err := ws.transition(post, models.PostStatusRejected); err != nil {
		return nil, err
	}

	ws.Activity.Log(models.ActivityPostReject, models.ActivityStatusSuccess, callerID, post)
	ws.notifyReviewOutcome(post, false)
	return post, nil
}

// checkModerationPermission loads the post and verifies the caller is an
// ADMIN or OWNER of its team. Personal posts always fail authorization here:
// the approval workflow is team-scoped only.
func (ws *WorkflowService) checkModerationPermission(postID, callerID uint) (*models.Post, error) {
	post, err := loadPost(ws.DB, postID)
	if err != nil {
		return nil, err
	}

	if post.TeamID == nil {
		return nil, utils.NewAuthorizationError("Not authorized to approve/reject posts")
	}

	member, err := findMembership(ws.DB, *post.TeamID, callerID)
	if err != nil {
		return nil, err
	}
	if !canModerate(member) {
		return nil, utils.NewAuthorizationError("Not authorized to approve/reject posts")
	}

	return post, nil
}

// transition persists a status change. Guards have all passed by the time
// this runs; a store failure here is an internal error.
func (ws *WorkflowService) transition(post *models.Post, next models.PostStatus) error {
	if err := ws.DB.Model(post).Update("status", next).Error; err != nil {
		return utils.NewInternalError(err)
	}
	post.Status = next
	return nil
}

// notifyReviewOutcome tells the post owner and the rest of the team about an
// approve/reject. Fire-and-forget: enqueue failures are logged inside the
// notifier and never reach the caller.
func (ws *WorkflowService) notifyReviewOutcome(post *models.Post, approved bool) {
	ownerMsg := "Your post has been rejected."
	if approved {
		ownerMsg = "Your post has been approved!"
	}
	ws.Notifier.Notify(post.UserID, ownerMsg)

	if post.TeamID == nil {
		return
	}

	var owner models.User
	if err := ws.DB.First(&owner, post.UserID).Error; err != nil {
		ws.Logger.WithError(err).Warn("review notification: owner lookup failed")
		return
	}

	outcome := "rejected"
	if approved {
		outcome = "approved"
	}

	var members []models.TeamMember
	if err := ws.DB.Where("team_id = ?", *post.TeamID).Find(&members).Error; err != nil {
		ws.Logger.WithError(err).Warn("review notification: member lookup failed")
		return
	}
	for _, m := range members {
		if m.UserID != post.UserID {
			ws.Notifier.Notify(m.UserID, fmt.Sprintf("Post by %s has been %s", owner.Email, outcome))
		}
	}
}
