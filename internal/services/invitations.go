package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvitationService handles the invitee's side of directed challenge invitations.
type InvitationService struct {
	db   *gorm.DB
	opts options
}

func NewInvitationService(db *gorm.DB, opts ...Option) *InvitationService {
	return &InvitationService{db: db, opts: buildOptions(opts)}
}

// RespondResult tells the caller what a response changed.
type RespondResult struct {
	Invitation models.ChallengeInvitation `json:"invitation"`
	// Joined is true when accepting added the requester to the roster.
	Joined bool `json:"joined"`
}

// Respond accepts or declines an invitation addressed to the requester. Accepting
// joins the challenge unless the requester already participates. An invitation can
// be answered once.
func (s *InvitationService) Respond(ctx context.Context, invitationID uuid.UUID, accept bool, requester uuid.UUID) (*RespondResult, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var result RespondResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitation, err := findInvitation(tx, invitationID, false)
		if err != nil {
			return err
		}
		if invitation.InvitedUser != requester {
			return ErrNotInvitee
		}

		// Challenge before invitation, the same order Delete takes its locks in.
		ch, err := lockChallenge(tx, invitation.ChallengeID)
		if err != nil && !errors.Is(err, ErrChallengeNotFound) {
			return err
		}

		invitation, err = findInvitation(tx, invitationID, true)
		if err != nil {
			return err
		}
		if invitation.Status != models.InvitationPending {
			return ErrInvitationClosed
		}

		respondedAt := s.opts.now()
		invitation.Status = models.InvitationDeclined
		if accept {
			invitation.Status = models.InvitationAccepted
		}
		invitation.RespondedAt = &respondedAt
		if err := tx.Model(invitation).Updates(map[string]interface{}{
			"status":       invitation.Status,
			"responded_at": respondedAt,
		}).Error; err != nil {
			return fmt.Errorf("update invitation: %w", err)
		}
		result.Invitation = *invitation

		if !accept || ch == nil || ch.HasParticipant(requester) {
			return nil
		}
		if err := addParticipant(tx, ch, requester, models.RoleParticipant, s.opts.now()); err != nil {
			return err
		}
		result.Joined = true
		return logActivity(tx, ch.ID, requester, models.ActivityInvitationAccepted, &invitation.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func findInvitation(tx *gorm.DB, id uuid.UUID, lock bool) (*models.ChallengeInvitation, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var invitation models.ChallengeInvitation
	err := q.First(&invitation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	return &invitation, nil
}

// ListPending returns the requester's open invitations with the challenge and the
// inviter's name. Invitations whose challenge or inviter is gone are left out.
func (s *InvitationService) ListPending(ctx context.Context, requester uuid.UUID) ([]models.PendingInvitation, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	var invitations []models.ChallengeInvitation
	if err := db.Where("invited_user = ? AND status = ?", requester, models.InvitationPending).
		Order("sent_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if len(invitations) == 0 {
		return []models.PendingInvitation{}, nil
	}

	challengeIDs := make([]uuid.UUID, 0, len(invitations))
	inviterIDs := make([]uuid.UUID, 0, len(invitations))
	for _, inv := range invitations {
		challengeIDs = append(challengeIDs, inv.ChallengeID)
		inviterIDs = append(inviterIDs, inv.InvitedBy)
	}

	var challenges []models.Challenge
	if err := db.Where("id IN ?", challengeIDs).Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Challenge, len(challenges))
	ptrs := make([]*models.Challenge, len(challenges))
	for i := range challenges {
		byID[challenges[i].ID] = &challenges[i]
		ptrs[i] = &challenges[i]
	}
	if err := loadParticipants(db, ptrs...); err != nil {
		return nil, err
	}

	inviters, err := userSummaries(db, inviterIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.PendingInvitation, 0, len(invitations))
	for _, inv := range invitations {
		ch, ok := byID[inv.ChallengeID]
		if !ok {
			continue
		}
		inviter, ok := inviters[inv.InvitedBy]
		if !ok {
			continue
		}
		result = append(result, models.PendingInvitation{
			ChallengeInvitation: inv,
			Challenge:           *ch,
			InviterName:         inviter.Name("Someone"),
		})
	}
	return result, nil
}
