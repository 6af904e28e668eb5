package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Battle lifecycle statuses. A battle only ever moves from in_progress to
// completed.
const (
	BattleInProgress = "in_progress"
	BattleCompleted  = "completed"
)

// TotalRounds is the fixed length of every battle.
const TotalRounds = 3

// Battle represents one bot-vs-bot contest. WinnerID stays nil while the
// battle is in progress; once completed, nil encodes a draw. EloChange is
// the magnitude of the rating swing applied at completion.
type Battle struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Bot1ID       primitive.ObjectID  `json:"bot1_id" bson:"bot1_id"`
	Bot2ID       primitive.ObjectID  `json:"bot2_id" bson:"bot2_id"`
	CurrentRound int                 `json:"current_round" bson:"current_round"`
	Bot1Score    int                 `json:"bot1_score" bson:"bot1_score"`
	Bot2Score    int                 `json:"bot2_score" bson:"bot2_score"`
	Status       string              `json:"status" bson:"status"`
	WinnerID     *primitive.ObjectID `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	EloChange    int                 `json:"elo_change" bson:"elo_change"`
	DJCommentary string              `json:"dj_commentary,omitempty" bson:"dj_commentary,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
}

// BattleUpdate is the partial update written by the advance operation.
// Winner, elo change and completion timestamp are only meaningful when
// Status flips to completed.
type BattleUpdate struct {
	CurrentRound int
	Bot1Score    int
	Bot2Score    int
	Status       string
	WinnerID     *primitive.ObjectID
	EloChange    int
	DJCommentary string
	CompletedAt  *time.Time
}
