package services

import (
	"context"
	"errors"

	"clawcypher/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors surfaced by the store and the battle state machine.
// Controllers map these to HTTP status codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrBattleCompleted = errors.New("battle already completed")
	ErrFinalRound      = errors.New("battle has already reached final round")
)

// Store is the row-store contract the services run against. The Mongo
// implementation lives in the db package; tests use an in-memory fake.
type Store interface {
	CreateBot(ctx context.Context, bot *models.Bot) error
	GetBot(ctx context.Context, id primitive.ObjectID) (*models.Bot, error)
	ListBots(ctx context.Context) ([]models.Bot, error)
	// ApplyBotResult sets the bot's new rating and increments its
	// battle counters by the given amounts (total battles always by 1).
	ApplyBotResult(ctx context.Context, id primitive.ObjectID, update models.BotStatsUpdate) error

	InsertBattle(ctx context.Context, battle *models.Battle) error
	GetBattle(ctx context.Context, id primitive.ObjectID) (*models.Battle, error)
	UpdateBattle(ctx context.Context, id primitive.ObjectID, update models.BattleUpdate) error
	ListBattles(ctx context.Context, limit int64) ([]models.Battle, error)

	InsertVerses(ctx context.Context, verses []models.Verse) error
	GetVerse(ctx context.Context, id primitive.ObjectID) (*models.Verse, error)
	ListBattleVerses(ctx context.Context, battleID primitive.ObjectID) ([]models.Verse, error)
	// SetVerseAudio overwrites the verse's audio reference.
	SetVerseAudio(ctx context.Context, verseID primitive.ObjectID, audioURL string) error
	// ClaimVerseAudio stores the pending marker only while the verse has
	// no audio reference yet. Returns false when another request already
	// claimed it.
	ClaimVerseAudio(ctx context.Context, verseID primitive.ObjectID, pendingMarker string) (bool, error)
}
