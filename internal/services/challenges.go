package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService owns challenge definitions, invite codes and the participant roster.
type ChallengeService struct {
	db   *gorm.DB
	opts options
}

func NewChallengeService(db *gorm.DB, opts ...Option) *ChallengeService {
	return &ChallengeService{db: db, opts: buildOptions(opts)}
}

// Create stores a new pending challenge with the requester as its only participant.
// A code that loses the unique-index race to a concurrent create restarts the
// transaction with a fresh code.
func (s *ChallengeService) Create(ctx context.Context, requester uuid.UUID, req models.CreateChallengeRequest) (*models.CreateChallengeResponse, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	var ch models.Challenge
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			code, err := allocateInviteCode(tx, s.opts.newCode)
			if err != nil {
				return err
			}

			ch = models.Challenge{
				Name:        req.Name,
				Description: req.Description,
				CreatedBy:   requester,
				StartDate:   req.StartDate,
				EndDate:     req.EndDate,
				IsPublic:    req.IsPublic,
				InviteCode:  code,
				DailyTasks:  req.DailyTasks,
				Status:      models.ChallengeStatusPending,
			}
			if err := tx.Create(&ch).Error; err != nil {
				return err
			}
			return addParticipant(tx, &ch, requester, models.RoleCreator, s.opts.now())
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create challenge: %w", err)
		}
		return &models.CreateChallengeResponse{ChallengeID: ch.ID, InviteCode: ch.InviteCode}, nil
	}
	return nil, errInviteCodesExhausted
}

func validateCreate(req *models.CreateChallengeRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return invalid("Name is required")
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return invalid("End date must not be before the start date")
	}
	if req.DailyTasks == nil {
		req.DailyTasks = []models.DailyTask{}
	}
	for i, task := range req.DailyTasks {
		if strings.TrimSpace(task.Name) == "" {
			return invalid(fmt.Sprintf("Daily task %d needs a name", i+1))
		}
	}
	return nil
}

// JoinByCode adds the requester to the challenge holding code. The code must match
// the stored form exactly; see NormalizeInviteCode.
func (s *ChallengeService) JoinByCode(ctx context.Context, code string, requester uuid.UUID) (*models.Challenge, error) {
	return s.join(ctx, code, requester, false)
}

// JoinAfterSignup is JoinByCode for the post-signup flow: existing members succeed
// without change.
func (s *ChallengeService) JoinAfterSignup(ctx context.Context, code string, requester uuid.UUID) (*models.Challenge, error) {
	return s.join(ctx, code, requester, true)
}

func (s *ChallengeService) join(ctx context.Context, code string, requester uuid.UUID, idempotent bool) (*models.Challenge, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var joined *models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := lockChallengeByCode(tx, code)
		if err != nil {
			return err
		}
		joined = ch

		if ch.HasParticipant(requester) {
			if idempotent {
				return nil
			}
			return ErrAlreadyMember
		}

		if err := addParticipant(tx, ch, requester, models.RoleParticipant, s.opts.now()); err != nil {
			return err
		}
		return logActivity(tx, ch.ID, requester, models.ActivityMemberJoined, nil, map[string]interface{}{
			"via": "invite_code",
		})
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// Invite records a pending invitation from the creator to invitedUserID.
func (s *ChallengeService) Invite(ctx context.Context, challengeID, invitedUserID, requester uuid.UUID) (*models.ChallengeInvitation, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if invitedUserID == uuid.Nil {
		return nil, invalid("User to invite is required")
	}

	var invitation models.ChallengeInvitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.CreatedBy != requester {
			return ErrNotCreator
		}

		var pending int64
		if err := tx.Model(&models.ChallengeInvitation{}).
			Where("challenge_id = ? AND invited_user = ? AND status = ?", challengeID, invitedUserID, models.InvitationPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("check invitations: %w", err)
		}
		if pending > 0 {
			return ErrAlreadyInvited
		}

		invitation = models.ChallengeInvitation{
			ChallengeID: challengeID,
			InvitedBy:   requester,
			InvitedUser: invitedUserID,
			Status:      models.InvitationPending,
			SentAt:      s.opts.now(),
		}
		if err := tx.Create(&invitation).Error; err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// RemoveParticipant lets the creator drop a participant and all of their progress.
func (s *ChallengeService) RemoveParticipant(ctx context.Context, challengeID, participantID, requester uuid.UUID) (*models.Challenge, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var removedFrom *models.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.CreatedBy != requester {
			return ErrNotCreator
		}
		if participantID == ch.CreatedBy {
			return ErrCannotRemoveCreator
		}
		if !ch.HasParticipant(participantID) {
			return ErrNotAParticipant
		}

		if err := dropParticipant(tx, ch, participantID); err != nil {
			return err
		}
		removedFrom = ch
		return logActivity(tx, ch.ID, requester, models.ActivityMemberRemoved, &participantID, nil)
	})
	if err != nil {
		return nil, err
	}
	return removedFrom, nil
}

// Leave removes the requester from a challenge they joined. The creator cannot leave.
func (s *ChallengeService) Leave(ctx context.Context, challengeID, requester uuid.UUID) error {
	if requester == uuid.Nil {
		return ErrUnauthenticated
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if requester == ch.CreatedBy {
			return ErrCannotRemoveCreator
		}
		if !ch.HasParticipant(requester) {
			return ErrNotAParticipant
		}

		if err := dropParticipant(tx, ch, requester); err != nil {
			return err
		}
		return logActivity(tx, ch.ID, requester, models.ActivityMemberLeft, nil, nil)
	})
}

// Delete removes a challenge and everything that references it. Creator only.
func (s *ChallengeService) Delete(ctx context.Context, challengeID, requester uuid.UUID) error {
	if requester == uuid.Nil {
		return ErrUnauthenticated
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, err := lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.CreatedBy != requester {
			return ErrNotCreator
		}

		owned := []interface{}{
			&models.ChallengeProgress{},
			&models.ChallengeInvitation{},
			&models.ChallengeActivity{},
			&models.ChallengeParticipant{},
		}
		for _, model := range owned {
			if err := tx.Where("challenge_id = ?", challengeID).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}

		if err := tx.Delete(&models.Challenge{}, "id = ?", challengeID).Error; err != nil {
			return fmt.Errorf("delete challenge: %w", err)
		}
		return nil
	})
}

// ListMine returns every challenge the requester created or participates in, newest first.
func (s *ChallengeService) ListMine(ctx context.Context, requester uuid.UUID) ([]models.Challenge, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	memberOf := db.Model(&models.ChallengeParticipant{}).Select("challenge_id").Where("user_id = ?", requester)

	var challenges []models.Challenge
	if err := db.Where("created_by = ? OR id IN (?)", requester, memberOf).
		Order("created_at DESC").
		Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	ptrs := make([]*models.Challenge, len(challenges))
	for i := range challenges {
		ptrs[i] = &challenges[i]
	}
	if err := loadParticipants(db, ptrs...); err != nil {
		return nil, err
	}
	return challenges, nil
}

// Get returns a challenge to its participants, or to anyone when it is public.
func (s *ChallengeService) Get(ctx context.Context, challengeID, requester uuid.UUID) (*models.Challenge, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	ch, err := findChallenge(s.db.WithContext(ctx), challengeID)
	if err != nil {
		return nil, err
	}
	if !ch.IsPublic && !ch.HasParticipant(requester) {
		return nil, ErrChallengeNotFound
	}
	return ch, nil
}

// GetByInviteCode is the unauthenticated invite preview.
func (s *ChallengeService) GetByInviteCode(ctx context.Context, code string) (*models.ChallengePreview, error) {
	db := s.db.WithContext(ctx)

	var ch models.Challenge
	err := db.Where("invite_code = ?", code).First(&ch).Error
	found, err := withParticipants(db, &ch, err)
	if err != nil {
		return nil, err
	}

	creators, err := userSummaries(db, []uuid.UUID{found.CreatedBy})
	if err != nil {
		return nil, err
	}
	creator, ok := creators[found.CreatedBy]
	creatorName := "Someone"
	if ok {
		creatorName = creator.Name(creatorName)
	}

	return &models.ChallengePreview{
		Challenge:        *found,
		CreatorName:      creatorName,
		ParticipantCount: len(found.Participants),
	}, nil
}

// Participants lists the roster with resolved names. Participants only.
func (s *ChallengeService) Participants(ctx context.Context, challengeID, requester uuid.UUID) ([]models.ParticipantInfo, error) {
	if requester == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)

	ch, err := findChallenge(db, challengeID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(requester) {
		return nil, ErrNotAMember
	}

	users, err := userSummaries(db, ch.Participants)
	if err != nil {
		return nil, err
	}

	result := make([]models.ParticipantInfo, 0, len(ch.Participants))
	for _, id := range ch.Participants {
		user, ok := users[id]
		if !ok {
			continue
		}
		email := ""
		if user.ContactID != nil {
			email = *user.ContactID
		}
		result = append(result, models.ParticipantInfo{
			UserID:    id,
			Name:      user.Name("Anonymous"),
			Email:     email,
			IsCreator: id == ch.CreatedBy,
		})
	}
	return result, nil
}
