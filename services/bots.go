package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clawcypher/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BotService covers the roster and leaderboard reads plus bot creation.
type BotService struct {
	store Store
}

func NewBotService(store Store) *BotService {
	return &BotService{store: store}
}

// Create registers a new bot at the default rating.
func (s *BotService) Create(ctx context.Context, name, personality string) (*models.Bot, error) {
	name = strings.TrimSpace(name)
	personality = strings.TrimSpace(personality)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if personality == "" {
		return nil, fmt.Errorf("personality is required")
	}

	bot := &models.Bot{
		Name:        name,
		Personality: personality,
		EloRating:   models.DefaultEloRating,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateBot(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return bot, nil
}

// Get returns one bot.
func (s *BotService) Get(ctx context.Context, id primitive.ObjectID) (*models.Bot, error) {
	return s.store.GetBot(ctx, id)
}

// List returns the roster ordered by rating.
func (s *BotService) List(ctx context.Context) ([]models.Bot, error) {
	return s.store.ListBots(ctx)
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank int        `json:"rank"`
	Bot  models.Bot `json:"bot"`
}

// Leaderboard returns all bots ranked by rating.
func (s *BotService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	bots, err := s.store.ListBots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	entries := make([]LeaderboardEntry, len(bots))
	for i, bot := range bots {
		entries[i] = LeaderboardEntry{Rank: i + 1, Bot: bot}
	}
	return entries, nil
}
