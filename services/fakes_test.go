package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"clawcypher/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeChat scripts the language model per client: verse calls pop from
// verseResponses, judge calls from judgeResponses, commentary calls
// return commentary. Calls are routed by system prompt.
type fakeChat struct {
	verseResponses []string
	judgeResponses []string
	commentary     string

	verseErr      error
	commentaryErr error

	verseCalls      int
	judgeCalls      int
	commentaryCalls int

	lastUserPrompts []string
}

func (f *fakeChat) Chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	f.lastUserPrompts = append(f.lastUserPrompts, user)

	switch {
	case strings.Contains(system, "judge"):
		f.judgeCalls++
		if len(f.judgeResponses) == 0 {
			return "7", nil
		}
		response := f.judgeResponses[0]
		f.judgeResponses = f.judgeResponses[1:]
		return response, nil
	case strings.Contains(system, "commentator"):
		f.commentaryCalls++
		if f.commentaryErr != nil {
			return "", f.commentaryErr
		}
		if f.commentary == "" {
			return "What a round!", nil
		}
		return f.commentary, nil
	default:
		f.verseCalls++
		if f.verseErr != nil {
			return "", f.verseErr
		}
		if len(f.verseResponses) == 0 {
			return "spitting bars line one\nline two\nline three\nline four", nil
		}
		response := f.verseResponses[0]
		f.verseResponses = f.verseResponses[1:]
		return response, nil
	}
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	bots    map[primitive.ObjectID]*models.Bot
	battles map[primitive.ObjectID]*models.Battle
	verses  map[primitive.ObjectID]*models.Verse

	botUpdateErr   map[primitive.ObjectID]error
	battleUpdates  int
	verseInserts   int
	statsUpdates   []primitive.ObjectID
	audioWrites    int
	claimAttempts  int
	claimRejects   int
	claimRejectAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bots:         make(map[primitive.ObjectID]*models.Bot),
		battles:      make(map[primitive.ObjectID]*models.Battle),
		verses:       make(map[primitive.ObjectID]*models.Verse),
		botUpdateErr: make(map[primitive.ObjectID]error),
	}
}

func (f *fakeStore) addBot(name string, rating int) *models.Bot {
	bot := &models.Bot{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Personality: "ruthless",
		EloRating:   rating,
	}
	f.bots[bot.ID] = bot
	return bot
}

func (f *fakeStore) addVerse(botID primitive.ObjectID, text, audioURL string) *models.Verse {
	verse := &models.Verse{
		ID:          primitive.NewObjectID(),
		BattleID:    primitive.NewObjectID(),
		BotID:       botID,
		RoundNumber: 1,
		VerseType:   models.VerseOpening,
		VerseText:   text,
		Score:       7,
		AudioURL:    audioURL,
	}
	f.verses[verse.ID] = verse
	return verse
}

func (f *fakeStore) CreateBot(ctx context.Context, bot *models.Bot) error {
	if bot.ID.IsZero() {
		bot.ID = primitive.NewObjectID()
	}
	copied := *bot
	f.bots[bot.ID] = &copied
	return nil
}

func (f *fakeStore) GetBot(ctx context.Context, id primitive.ObjectID) (*models.Bot, error) {
	bot, ok := f.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *bot
	return &copied, nil
}

func (f *fakeStore) ListBots(ctx context.Context) ([]models.Bot, error) {
	var bots []models.Bot
	for _, bot := range f.bots {
		bots = append(bots, *bot)
	}
	sort.Slice(bots, func(i, j int) bool { return bots[i].EloRating > bots[j].EloRating })
	return bots, nil
}

func (f *fakeStore) ApplyBotResult(ctx context.Context, id primitive.ObjectID, update models.BotStatsUpdate) error {
	if err := f.botUpdateErr[id]; err != nil {
		return err
	}
	bot, ok := f.bots[id]
	if !ok {
		return ErrNotFound
	}
	bot.EloRating = update.EloRating
	bot.TotalBattles++
	bot.Wins += update.Wins
	bot.Losses += update.Losses
	bot.Draws += update.Draws
	f.statsUpdates = append(f.statsUpdates, id)
	return nil
}

func (f *fakeStore) InsertBattle(ctx context.Context, battle *models.Battle) error {
	if battle.ID.IsZero() {
		battle.ID = primitive.NewObjectID()
	}
	copied := *battle
	f.battles[battle.ID] = &copied
	return nil
}

func (f *fakeStore) GetBattle(ctx context.Context, id primitive.ObjectID) (*models.Battle, error) {
	battle, ok := f.battles[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *battle
	return &copied, nil
}

func (f *fakeStore) UpdateBattle(ctx context.Context, id primitive.ObjectID, update models.BattleUpdate) error {
	battle, ok := f.battles[id]
	if !ok {
		return ErrNotFound
	}
	battle.CurrentRound = update.CurrentRound
	battle.Bot1Score = update.Bot1Score
	battle.Bot2Score = update.Bot2Score
	battle.Status = update.Status
	battle.DJCommentary = update.DJCommentary
	if update.Status == models.BattleCompleted {
		battle.WinnerID = update.WinnerID
		battle.EloChange = update.EloChange
		battle.CompletedAt = update.CompletedAt
	}
	f.battleUpdates++
	return nil
}

func (f *fakeStore) ListBattles(ctx context.Context, limit int64) ([]models.Battle, error) {
	var battles []models.Battle
	for _, battle := range f.battles {
		battles = append(battles, *battle)
	}
	sort.Slice(battles, func(i, j int) bool { return battles[i].CreatedAt.After(battles[j].CreatedAt) })
	if limit > 0 && int64(len(battles)) > limit {
		battles = battles[:limit]
	}
	return battles, nil
}

func (f *fakeStore) InsertVerses(ctx context.Context, verses []models.Verse) error {
	for i := range verses {
		if verses[i].ID.IsZero() {
			verses[i].ID = primitive.NewObjectID()
		}
		copied := verses[i]
		f.verses[copied.ID] = &copied
	}
	f.verseInserts += len(verses)
	return nil
}

func (f *fakeStore) GetVerse(ctx context.Context, id primitive.ObjectID) (*models.Verse, error) {
	verse, ok := f.verses[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *verse
	return &copied, nil
}

func (f *fakeStore) ListBattleVerses(ctx context.Context, battleID primitive.ObjectID) ([]models.Verse, error) {
	var verses []models.Verse
	for _, verse := range f.verses {
		if verse.BattleID == battleID {
			verses = append(verses, *verse)
		}
	}
	sort.Slice(verses, func(i, j int) bool { return verses[i].RoundNumber < verses[j].RoundNumber })
	return verses, nil
}

func (f *fakeStore) SetVerseAudio(ctx context.Context, verseID primitive.ObjectID, audioURL string) error {
	verse, ok := f.verses[verseID]
	if !ok {
		return ErrNotFound
	}
	verse.AudioURL = audioURL
	f.audioWrites++
	return nil
}

func (f *fakeStore) ClaimVerseAudio(ctx context.Context, verseID primitive.ObjectID, pendingMarker string) (bool, error) {
	f.claimAttempts++
	verse, ok := f.verses[verseID]
	if !ok {
		return false, nil
	}
	if f.claimRejects > 0 {
		f.claimRejects--
		return false, nil
	}
	if f.claimRejectAll || verse.AudioURL != "" {
		return false, nil
	}
	verse.AudioURL = pendingMarker
	return true, nil
}

// fakeMedia scripts the media-generation service.
type fakeMedia struct {
	nextID      string
	createErr   error
	prediction  *Prediction
	getErr      error
	createCalls int
	getCalls    int
	lastInput   map[string]any
	onCreate    func()
}

func (f *fakeMedia) CreatePrediction(ctx context.Context, input map[string]any) (*Prediction, error) {
	f.createCalls++
	f.lastInput = input
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	if id == "" {
		id = fmt.Sprintf("job-%d", f.createCalls)
	}
	return &Prediction{ID: id, Status: "starting"}, nil
}

func (f *fakeMedia) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.prediction != nil {
		p := *f.prediction
		p.ID = id
		return &p, nil
	}
	return &Prediction{ID: id, Status: "processing"}, nil
}
