package db

import (
	"context"
	"errors"
	"fmt"

	"clawcypher/models"
	"clawcypher/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements services.Store against the bots, battles and
// battle_verses collections.
type MongoStore struct {
	bots    *mongo.Collection
	battles *mongo.Collection
	verses  *mongo.Collection
}

// NewMongoStore binds the store to its collections.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		bots:    database.Collection("bots"),
		battles: database.Collection("battles"),
		verses:  database.Collection("battle_verses"),
	}
}

func (s *MongoStore) CreateBot(ctx context.Context, bot *models.Bot) error {
	if bot.ID.IsZero() {
		bot.ID = primitive.NewObjectID()
	}
	if _, err := s.bots.InsertOne(ctx, bot); err != nil {
		return fmt.Errorf("failed to insert bot: %w", err)
	}
	return nil
}

func (s *MongoStore) GetBot(ctx context.Context, id primitive.ObjectID) (*models.Bot, error) {
	var bot models.Bot
	err := s.bots.FindOne(ctx, bson.M{"_id": id}).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch bot: %w", err)
	}
	return &bot, nil
}

func (s *MongoStore) ListBots(ctx context.Context) ([]models.Bot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "elo_rating", Value: -1}})
	cursor, err := s.bots.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}
	defer cursor.Close(ctx)

	var bots []models.Bot
	if err := cursor.All(ctx, &bots); err != nil {
		return nil, fmt.Errorf("failed to decode bots: %w", err)
	}
	return bots, nil
}

func (s *MongoStore) ApplyBotResult(ctx context.Context, id primitive.ObjectID, update models.BotStatsUpdate) error {
	result, err := s.bots.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"elo_rating": update.EloRating},
		"$inc": bson.M{
			"total_battles": 1,
			"wins":          update.Wins,
			"losses":        update.Losses,
			"draws":         update.Draws,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update bot stats: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertBattle(ctx context.Context, battle *models.Battle) error {
	if battle.ID.IsZero() {
		battle.ID = primitive.NewObjectID()
	}
	if _, err := s.battles.InsertOne(ctx, battle); err != nil {
		return fmt.Errorf("failed to insert battle: %w", err)
	}
	return nil
}

func (s *MongoStore) GetBattle(ctx context.Context, id primitive.ObjectID) (*models.Battle, error) {
	var battle models.Battle
	err := s.battles.FindOne(ctx, bson.M{"_id": id}).Decode(&battle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch battle: %w", err)
	}
	return &battle, nil
}

func (s *MongoStore) UpdateBattle(ctx context.Context, id primitive.ObjectID, update models.BattleUpdate) error {
	set := bson.M{
		"current_round": update.CurrentRound,
		"bot1_score":    update.Bot1Score,
		"bot2_score":    update.Bot2Score,
		"status":        update.Status,
		"dj_commentary": update.DJCommentary,
	}
	if update.Status == models.BattleCompleted {
		set["winner_id"] = update.WinnerID
		set["elo_change"] = update.EloChange
		set["completed_at"] = update.CompletedAt
	}

	result, err := s.battles.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update battle: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListBattles(ctx context.Context, limit int64) ([]models.Battle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := s.battles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}
	defer cursor.Close(ctx)

	var battles []models.Battle
	if err := cursor.All(ctx, &battles); err != nil {
		return nil, fmt.Errorf("failed to decode battles: %w", err)
	}
	return battles, nil
}

func (s *MongoStore) InsertVerses(ctx context.Context, verses []models.Verse) error {
	docs := make([]interface{}, len(verses))
	for i := range verses {
		if verses[i].ID.IsZero() {
			verses[i].ID = primitive.NewObjectID()
		}
		docs[i] = verses[i]
	}
	if _, err := s.verses.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert verses: %w", err)
	}
	return nil
}

func (s *MongoStore) GetVerse(ctx context.Context, id primitive.ObjectID) (*models.Verse, error) {
	var verse models.Verse
	err := s.verses.FindOne(ctx, bson.M{"_id": id}).Decode(&verse)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch verse: %w", err)
	}
	return &verse, nil
}

func (s *MongoStore) ListBattleVerses(ctx context.Context, battleID primitive.ObjectID) ([]models.Verse, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "round_number", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := s.verses.Find(ctx, bson.M{"battle_id": battleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list verses: %w", err)
	}
	defer cursor.Close(ctx)

	var verses []models.Verse
	if err := cursor.All(ctx, &verses); err != nil {
		return nil, fmt.Errorf("failed to decode verses: %w", err)
	}
	return verses, nil
}

func (s *MongoStore) SetVerseAudio(ctx context.Context, verseID primitive.ObjectID, audioURL string) error {
	update := bson.M{"$set": bson.M{"audio_url": audioURL}}
	if audioURL == "" {
		update = bson.M{"$unset": bson.M{"audio_url": ""}}
	}
	result, err := s.verses.UpdateByID(ctx, verseID, update)
	if err != nil {
		return fmt.Errorf("failed to update verse audio: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// ClaimVerseAudio is the conditional write that keeps "at most one
// outstanding job per verse": it only matches while the verse has no
// audio reference.
func (s *MongoStore) ClaimVerseAudio(ctx context.Context, verseID primitive.ObjectID, pendingMarker string) (bool, error) {
	filter := bson.M{
		"_id": verseID,
		"$or": []bson.M{
			{"audio_url": bson.M{"$exists": false}},
			{"audio_url": ""},
		},
	}
	result, err := s.verses.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"audio_url": pendingMarker}})
	if err != nil {
		return false, fmt.Errorf("failed to claim verse audio: %w", err)
	}
	return result.MatchedCount > 0, nil
}
