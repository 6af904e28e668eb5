package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultEloRating is the rating assigned to a freshly created bot.
const DefaultEloRating = 1200

// Bot represents one battle rapper. Its rating and counters are mutated
// only when a battle completes.
type Bot struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Personality  string             `json:"personality" bson:"personality"`
	EloRating    int                `json:"elo_rating" bson:"elo_rating"`
	TotalBattles int                `json:"total_battles" bson:"total_battles"`
	Wins         int                `json:"wins" bson:"wins"`
	Losses       int                `json:"losses" bson:"losses"`
	Draws        int                `json:"draws" bson:"draws"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// BotStatsUpdate carries the post-battle mutation for one bot. Counter
// fields are increments; EloRating is the new absolute rating.
type BotStatsUpdate struct {
	EloRating int
	Wins      int
	Losses    int
	Draws     int
}
