package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"clawcypher/models"
	"clawcypher/rating"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BattleService is the battle state machine: it creates battles, advances
// them round by round and settles ratings on completion.
type BattleService struct {
	store  Store
	verses *VerseService
}

// NewBattleService wires the state machine to its store and verse clients.
func NewBattleService(store Store, verses *VerseService) *BattleService {
	return &BattleService{store: store, verses: verses}
}

// RoundResult is one round's generated output.
type RoundResult struct {
	RoundNumber int    `json:"round_number"`
	VerseType   string `json:"verse_type"`
	Bot1Verse   string `json:"bot1_verse"`
	Bot2Verse   string `json:"bot2_verse"`
	Bot1Score   int    `json:"bot1_score"`
	Bot2Score   int    `json:"bot2_score"`
	Commentary  string `json:"dj_commentary,omitempty"`
}

// BotResult summarizes one bot's standing after an operation.
type BotResult struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Score     int                `json:"score"`
	EloChange int                `json:"elo_change"`
	NewElo    int                `json:"new_elo"`
}

// BattleResult is the response payload for create and advance.
type BattleResult struct {
	BattleID     primitive.ObjectID  `json:"battle_id"`
	Status       string              `json:"status"`
	CurrentRound int                 `json:"current_round"`
	WinnerID     *primitive.ObjectID `json:"winner_id,omitempty"`
	IsDraw       bool                `json:"is_draw"`
	Bot1         BotResult           `json:"bot1"`
	Bot2         BotResult           `json:"bot2"`
	Round        RoundResult         `json:"round"`
}

// Create starts a battle between two bots and generates round 1 only;
// later rounds are produced by Advance so the initial request stays
// bounded.
func (s *BattleService) Create(ctx context.Context, bot1ID, bot2ID primitive.ObjectID) (*BattleResult, error) {
	bot1, err := s.store.GetBot(ctx, bot1ID)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot1ID.Hex(), err)
	}
	bot2, err := s.store.GetBot(ctx, bot2ID)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot2ID.Hex(), err)
	}

	log.Printf("battle starting: %s vs %s", bot1.Name, bot2.Name)

	round, err := s.generateRound(ctx, bot1, bot2, 1, nil, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	battle := &models.Battle{
		Bot1ID:       bot1.ID,
		Bot2ID:       bot2.ID,
		CurrentRound: 1,
		Bot1Score:    round.Bot1Score,
		Bot2Score:    round.Bot2Score,
		Status:       models.BattleInProgress,
		DJCommentary: round.Commentary,
		CreatedAt:    now,
	}
	if err := s.store.InsertBattle(ctx, battle); err != nil {
		return nil, fmt.Errorf("failed to save battle: %w", err)
	}

	if err := s.insertRoundVerses(ctx, battle.ID, bot1.ID, bot2.ID, round, now); err != nil {
		return nil, err
	}

	return &BattleResult{
		BattleID:     battle.ID,
		Status:       battle.Status,
		CurrentRound: battle.CurrentRound,
		Bot1:         BotResult{ID: bot1.ID, Name: bot1.Name, Score: round.Bot1Score, NewElo: bot1.EloRating},
		Bot2:         BotResult{ID: bot2.ID, Name: bot2.Name, Score: round.Bot2Score, NewElo: bot2.EloRating},
		Round:        *round,
	}, nil
}

// Advance generates the next round for an in-progress battle and, when
// that round is the final one, settles the winner and both ratings.
func (s *BattleService) Advance(ctx context.Context, battleID primitive.ObjectID) (*BattleResult, error) {
	battle, err := s.store.GetBattle(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("battle %s: %w", battleID.Hex(), err)
	}

	if battle.Status == models.BattleCompleted {
		return nil, ErrBattleCompleted
	}
	nextRound := battle.CurrentRound + 1
	if nextRound > models.TotalRounds {
		return nil, ErrFinalRound
	}

	bot1, err := s.store.GetBot(ctx, battle.Bot1ID)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", battle.Bot1ID.Hex(), err)
	}
	bot2, err := s.store.GetBot(ctx, battle.Bot2ID)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", battle.Bot2ID.Hex(), err)
	}

	previous, err := s.store.ListBattleVerses(ctx, battle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verses: %w", err)
	}
	var bot1Previous, bot2Previous []string
	for _, v := range previous {
		switch v.BotID {
		case bot1.ID:
			bot1Previous = append(bot1Previous, v.VerseText)
		case bot2.ID:
			bot2Previous = append(bot2Previous, v.VerseText)
		}
	}

	round, err := s.generateRound(ctx, bot1, bot2, nextRound, bot1Previous, bot2Previous,
		battle.Bot1Score, battle.Bot2Score)
	if err != nil {
		return nil, err
	}

	newBot1Total := battle.Bot1Score + round.Bot1Score
	newBot2Total := battle.Bot2Score + round.Bot2Score

	isComplete := nextRound == models.TotalRounds
	var winnerID *primitive.ObjectID
	isDraw := false
	bot1EloChange, bot2EloChange := 0, 0

	if isComplete {
		switch {
		case newBot1Total > newBot2Total:
			winnerID = &bot1.ID
		case newBot2Total > newBot1Total:
			winnerID = &bot2.ID
		default:
			isDraw = true
		}

		if isDraw {
			bot1EloChange, bot2EloChange = rating.Update(bot1.EloRating, bot2.EloRating, true)
		} else if *winnerID == bot1.ID {
			bot1EloChange, bot2EloChange = rating.Update(bot1.EloRating, bot2.EloRating, false)
		} else {
			bot2EloChange, bot1EloChange = rating.Update(bot2.EloRating, bot1.EloRating, false)
		}
	}

	now := time.Now().UTC()
	update := models.BattleUpdate{
		CurrentRound: nextRound,
		Bot1Score:    newBot1Total,
		Bot2Score:    newBot2Total,
		Status:       models.BattleInProgress,
		DJCommentary: round.Commentary,
	}
	if isComplete {
		update.Status = models.BattleCompleted
		update.WinnerID = winnerID
		update.EloChange = abs(bot1EloChange)
		update.CompletedAt = &now
	}
	if err := s.store.UpdateBattle(ctx, battle.ID, update); err != nil {
		return nil, fmt.Errorf("failed to update battle: %w", err)
	}

	if err := s.insertRoundVerses(ctx, battle.ID, bot1.ID, bot2.ID, round, now); err != nil {
		return nil, err
	}

	if isComplete {
		if err := s.settleBots(ctx, bot1, bot2, winnerID, isDraw, bot1EloChange, bot2EloChange); err != nil {
			return nil, err
		}
		log.Printf("battle %s complete, winner: %s", battle.ID.Hex(), winnerName(winnerID, bot1, bot2))
	}

	return &BattleResult{
		BattleID:     battle.ID,
		Status:       update.Status,
		CurrentRound: nextRound,
		WinnerID:     winnerID,
		IsDraw:       isDraw,
		Bot1: BotResult{ID: bot1.ID, Name: bot1.Name, Score: newBot1Total,
			EloChange: bot1EloChange, NewElo: bot1.EloRating + bot1EloChange},
		Bot2: BotResult{ID: bot2.ID, Name: bot2.Name, Score: newBot2Total,
			EloChange: bot2EloChange, NewElo: bot2.EloRating + bot2EloChange},
		Round: *round,
	}, nil
}

// generateRound produces both bots' judged verses and the round's
// commentary. Verse generation failures abort the round; commentary is
// best-effort and only logs.
func (s *BattleService) generateRound(ctx context.Context, bot1, bot2 *models.Bot, round int,
	bot1Previous, bot2Previous []string, priorBot1Total, priorBot2Total int) (*RoundResult, error) {

	verseType := models.VerseTypeForRound(round)

	bot1Verse, err := s.verses.Generate(ctx, bot1.Name, bot1.Personality, bot2.Name, verseType, bot1Previous)
	if err != nil {
		return nil, err
	}
	bot1Score := s.verses.Judge(ctx, bot1Verse, bot1.Name, bot2.Name)

	bot2Verse, err := s.verses.Generate(ctx, bot2.Name, bot2.Personality, bot1.Name, verseType, bot2Previous)
	if err != nil {
		return nil, err
	}
	bot2Score := s.verses.Judge(ctx, bot2Verse, bot2.Name, bot1.Name)

	commentary, err := s.verses.Commentary(ctx, round, RoundVerses{
		Bot1Name:       bot1.Name,
		Bot2Name:       bot2.Name,
		Bot1Verse:      bot1Verse,
		Bot2Verse:      bot2Verse,
		Bot1Score:      bot1Score,
		Bot2Score:      bot2Score,
		PriorBot1Total: priorBot1Total,
		PriorBot2Total: priorBot2Total,
	})
	if err != nil {
		// The round's verses are already generated and judged; losing
		// the color commentary is not worth aborting them.
		log.Printf("commentary generation failed for round %d: %v", round, err)
		commentary = ""
	}

	return &RoundResult{
		RoundNumber: round,
		VerseType:   verseType,
		Bot1Verse:   bot1Verse,
		Bot2Verse:   bot2Verse,
		Bot1Score:   bot1Score,
		Bot2Score:   bot2Score,
		Commentary:  commentary,
	}, nil
}

func (s *BattleService) insertRoundVerses(ctx context.Context, battleID, bot1ID, bot2ID primitive.ObjectID,
	round *RoundResult, now time.Time) error {

	verses := []models.Verse{
		{
			BattleID:    battleID,
			BotID:       bot1ID,
			RoundNumber: round.RoundNumber,
			VerseType:   round.VerseType,
			VerseText:   round.Bot1Verse,
			Score:       round.Bot1Score,
			CreatedAt:   now,
		},
		{
			BattleID:    battleID,
			BotID:       bot2ID,
			RoundNumber: round.RoundNumber,
			VerseType:   round.VerseType,
			VerseText:   round.Bot2Verse,
			Score:       round.Bot2Score,
			CreatedAt:   now,
		},
	}
	if err := s.store.InsertVerses(ctx, verses); err != nil {
		return fmt.Errorf("failed to save verses: %w", err)
	}
	return nil
}

// settleBots writes both bots' post-battle ratings and counters. The two
// writes are independent; a failure on one does not roll back the other,
// it is logged and reported (see DESIGN.md).
func (s *BattleService) settleBots(ctx context.Context, bot1, bot2 *models.Bot,
	winnerID *primitive.ObjectID, isDraw bool, bot1EloChange, bot2EloChange int) error {

	bot1Won := winnerID != nil && *winnerID == bot1.ID
	bot2Won := winnerID != nil && *winnerID == bot2.ID

	err1 := s.store.ApplyBotResult(ctx, bot1.ID, models.BotStatsUpdate{
		EloRating: bot1.EloRating + bot1EloChange,
		Wins:      boolToInt(bot1Won),
		Losses:    boolToInt(bot2Won),
		Draws:     boolToInt(isDraw),
	})
	if err1 != nil {
		log.Printf("failed to update bot %s after battle: %v", bot1.ID.Hex(), err1)
	}

	err2 := s.store.ApplyBotResult(ctx, bot2.ID, models.BotStatsUpdate{
		EloRating: bot2.EloRating + bot2EloChange,
		Wins:      boolToInt(bot2Won),
		Losses:    boolToInt(bot1Won),
		Draws:     boolToInt(isDraw),
	})
	if err2 != nil {
		log.Printf("failed to update bot %s after battle: %v", bot2.ID.Hex(), err2)
	}

	if err1 != nil {
		return fmt.Errorf("failed to update bot stats: %w", err1)
	}
	if err2 != nil {
		return fmt.Errorf("failed to update bot stats: %w", err2)
	}
	return nil
}

// BattleDetail is a battle with its verses, for the read endpoints.
type BattleDetail struct {
	Battle models.Battle  `json:"battle"`
	Verses []models.Verse `json:"verses"`
}

// Get returns one battle with all of its verses.
func (s *BattleService) Get(ctx context.Context, battleID primitive.ObjectID) (*BattleDetail, error) {
	battle, err := s.store.GetBattle(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("battle %s: %w", battleID.Hex(), err)
	}
	verses, err := s.store.ListBattleVerses(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verses: %w", err)
	}
	return &BattleDetail{Battle: *battle, Verses: verses}, nil
}

// List returns the most recent battles.
func (s *BattleService) List(ctx context.Context, limit int64) ([]models.Battle, error) {
	return s.store.ListBattles(ctx, limit)
}

func winnerName(winnerID *primitive.ObjectID, bot1, bot2 *models.Bot) string {
	if winnerID == nil {
		return "DRAW"
	}
	if *winnerID == bot1.ID {
		return bot1.Name
	}
	return bot2.Name
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
