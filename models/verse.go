package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verse phases, one per round.
const (
	VerseOpening  = "opening"
	VerseComeback = "comeback"
	VerseFinal    = "final"
)

// VerseTypeForRound maps a round number to its phase tag. Round 1 is the
// opening, round 2 the comeback, everything after that the final verse.
func VerseTypeForRound(round int) string {
	switch round {
	case 1:
		return VerseOpening
	case 2:
		return VerseComeback
	default:
		return VerseFinal
	}
}

// Verse is one bot's contribution to one round of one battle. AudioURL
// keeps the legacy string encoding (empty, "pending:<job>", or a playable
// URL); use Audio/SetAudio to work with it as a typed reference.
type Verse struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BattleID    primitive.ObjectID `json:"battle_id" bson:"battle_id"`
	BotID       primitive.ObjectID `json:"bot_id" bson:"bot_id"`
	RoundNumber int                `json:"round_number" bson:"round_number"`
	VerseType   string             `json:"verse_type" bson:"verse_type"`
	VerseText   string             `json:"verse_text" bson:"verse_text"`
	Score       int                `json:"score" bson:"score"`
	AudioURL    string             `json:"audio_url,omitempty" bson:"audio_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// Audio decodes the stored audio reference.
func (v *Verse) Audio() AudioRef {
	return ParseAudioRef(v.AudioURL)
}

// SetAudio encodes ref back into the stored string form.
func (v *Verse) SetAudio(ref AudioRef) {
	v.AudioURL = ref.Encode()
}
