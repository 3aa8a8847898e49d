package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// participantOrder puts the creator first, then members by join time.
const participantOrder = "CASE WHEN role = 'creator' THEN 0 ELSE 1 END, joined_at ASC, id ASC"

// lockChallenge loads a challenge with its participants, holding a row lock on
// PostgreSQL until tx ends. SQLite drops the locking clause and serialises writers.
func lockChallenge(tx *gorm.DB, challengeID uuid.UUID) (*models.Challenge, error) {
	var ch models.Challenge
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ch, "id = ?", challengeID).Error
	return withParticipants(tx, &ch, err)
}

func lockChallengeByCode(tx *gorm.DB, code string) (*models.Challenge, error) {
	var ch models.Challenge
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("invite_code = ?", code).First(&ch).Error
	return withParticipants(tx, &ch, err)
}

func findChallenge(db *gorm.DB, challengeID uuid.UUID) (*models.Challenge, error) {
	var ch models.Challenge
	err := db.First(&ch, "id = ?", challengeID).Error
	return withParticipants(db, &ch, err)
}

func withParticipants(db *gorm.DB, ch *models.Challenge, err error) (*models.Challenge, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if err := loadParticipants(db, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func loadParticipants(db *gorm.DB, challenges ...*models.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(challenges))
	byID := make(map[uuid.UUID]*models.Challenge, len(challenges))
	for i, ch := range challenges {
		ids[i] = ch.ID
		ch.Participants = []uuid.UUID{}
		byID[ch.ID] = ch
	}

	var rows []models.ChallengeParticipant
	if err := db.Where("challenge_id IN ?", ids).Order(participantOrder).Find(&rows).Error; err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	for _, r := range rows {
		ch := byID[r.ChallengeID]
		ch.Participants = append(ch.Participants, r.UserID)
	}
	return nil
}

// addParticipant appends userID to the roster as of now and opens their record
// for that UTC day.
func addParticipant(tx *gorm.DB, ch *models.Challenge, userID uuid.UUID, role string, now time.Time) error {
	member := models.ChallengeParticipant{
		ChallengeID: ch.ID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    now,
	}
	if err := tx.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("add participant: %w", err)
	}
	ch.Participants = append(ch.Participants, userID)

	if _, err := ensureInitialProgress(tx, ch, userID, now.UTC().Format(models.DateLayout)); err != nil {
		return err
	}
	return nil
}

// ensureInitialProgress creates an all-incomplete record for (challenge, user, date)
// unless one already exists.
func ensureInitialProgress(tx *gorm.DB, ch *models.Challenge, userID uuid.UUID, date string) (*models.ChallengeProgress, error) {
	var existing models.ChallengeProgress
	err := tx.Where("challenge_id = ? AND user_id = ? AND date = ?", ch.ID, userID, date).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find progress: %w", err)
	}

	progress := models.ChallengeProgress{
		ChallengeID:    ch.ID,
		UserID:         userID,
		Date:           date,
		CompletedTasks: models.BlankTasks(len(ch.DailyTasks)),
	}
	if err := tx.Create(&progress).Error; err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}
	return &progress, nil
}

// dropParticipant removes the membership row and every progress record of userID.
func dropParticipant(tx *gorm.DB, ch *models.Challenge, userID uuid.UUID) error {
	if err := tx.Where("challenge_id = ? AND user_id = ?", ch.ID, userID).Delete(&models.ChallengeParticipant{}).Error; err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if err := tx.Where("challenge_id = ? AND user_id = ?", ch.ID, userID).Delete(&models.ChallengeProgress{}).Error; err != nil {
		return fmt.Errorf("delete participant progress: %w", err)
	}

	kept := ch.Participants[:0]
	for _, id := range ch.Participants {
		if id != userID {
			kept = append(kept, id)
		}
	}
	ch.Participants = kept
	return nil
}

func logActivity(tx *gorm.DB, challengeID, userID uuid.UUID, actionType string, targetID *uuid.UUID, metadata map[string]interface{}) error {
	activity := models.ChallengeActivity{
		ChallengeID: challengeID,
		UserID:      userID,
		ActionType:  actionType,
		TargetID:    targetID,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		s := string(data)
		activity.Metadata = &s
	}

	if err := tx.Create(&activity).Error; err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

func isParticipant(db *gorm.DB, challengeID, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return n > 0, nil
}
