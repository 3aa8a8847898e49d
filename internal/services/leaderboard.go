package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/arnold/fitchallenge-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaderboardService ranks participants by their summed daily scores. Nothing is
// cached: past days can be edited, so every call reads the ledger again.
type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

type scoreTotal struct {
	UserID uuid.UUID
	Total  int
}

// Compute sums totalScore per user across every day of the challenge. Equal totals
// are ordered by user id.
func (s *LeaderboardService) Compute(ctx context.Context, challengeID uuid.UUID) ([]models.LeaderboardEntry, error) {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Challenge{}).Where("id = ?", challengeID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check challenge: %w", err)
	}
	if n == 0 {
		return nil, ErrChallengeNotFound
	}

	var totals []scoreTotal
	if err := db.Model(&models.ChallengeProgress{}).
		Select("user_id, SUM(total_score) AS total").
		Where("challenge_id = ?", challengeID).
		Group("user_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("sum scores: %w", err)
	}

	ids := make([]uuid.UUID, len(totals))
	for i, t := range totals {
		ids[i] = t.UserID
	}
	users, err := userSummaries(db, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(totals))
	for i, t := range totals {
		entries[i] = models.LeaderboardEntry{
			UserID:     t.UserID,
			UserName:   users[t.UserID].Name("Anonymous"),
			TotalScore: t.Total,
		}
	}
	rank(entries)
	return entries, nil
}

func rank(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
