package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"clawcypher/models"
)

// Sampling settings for the three generation clients. Verses and
// commentary want variety; judging wants a stable number.
const (
	verseTemperature      = 0.9
	verseMaxTokens        = 150
	judgeTemperature      = 0.3
	judgeMaxTokens        = 10
	commentaryTemperature = 0.9
	commentaryMaxTokens   = 150

	defaultScore = 5
	minScore     = 1
	maxScore     = 10
)

const verseSystemPrompt = "You are a skilled battle rapper. Generate creative, punchy rap verses " +
	"with good flow and clever wordplay. Keep verses to exactly 4 lines. Be fierce but not offensive."

const judgeSystemPrompt = "You are a professional rap battle judge. Rate verses on creativity, " +
	"flow, wordplay, and impact. Respond with ONLY a number from 1-10."

const commentarySystemPrompt = "You are DJ Claudius, an energetic rap battle commentator. " +
	"Reference specific bars from the verses. Keep it concise (2-3 sentences) and hype!"

var digitRun = regexp.MustCompile(`\d+`)

// VerseService wraps the language model with the verse, judging and
// commentary prompts.
type VerseService struct {
	chat ChatService
}

// NewVerseService builds a VerseService on top of the given chat client.
func NewVerseService(chat ChatService) *VerseService {
	return &VerseService{chat: chat}
}

// Generate produces one verse for a bot. previousVerses are that bot's
// earlier verses in the same battle, used as context for comeback and
// final verses. A failed generation call is fatal to the round.
func (s *VerseService) Generate(ctx context.Context, botName, personality, opponentName, verseType string, previousVerses []string) (string, error) {
	var prompt string
	switch verseType {
	case models.VerseOpening:
		prompt = fmt.Sprintf("You are %s, a %s battle rapper. Write a fierce 4-line opening verse "+
			"to start a rap battle against %s. Make it creative, punchy, and packed with wordplay. "+
			"Focus on establishing dominance.", botName, personality, opponentName)
	case models.VerseComeback:
		prompt = fmt.Sprintf("You are %s, a %s battle rapper. %s just dissed you. Write a savage "+
			"4-line comeback verse. Counter their attack and hit back harder. Previous context:\n%s",
			botName, personality, opponentName, strings.Join(previousVerses, "\n"))
	case models.VerseFinal:
		prompt = fmt.Sprintf("You are %s, a %s battle rapper. This is your final verse. Write an "+
			"epic 4-line closing statement to finish %s. Make it your most devastating verse yet. "+
			"Previous context:\n%s", botName, personality, opponentName, strings.Join(previousVerses, "\n"))
	default:
		return "", fmt.Errorf("unknown verse type: %s", verseType)
	}

	verse, err := s.chat.Chat(ctx, verseSystemPrompt, prompt, verseTemperature, verseMaxTokens)
	if err != nil {
		return "", fmt.Errorf("verse generation failed for %s: %w", botName, err)
	}
	return verse, nil
}

// Judge scores a verse in [1,10]. Judging is best-effort: a failed call
// or a response without digits falls back to the default score instead of
// aborting the round.
func (s *VerseService) Judge(ctx context.Context, verseText, botName, opponentName string) int {
	prompt := fmt.Sprintf("Rate this rap verse from %s against %s (1-10):\n\n\"%s\"",
		botName, opponentName, verseText)

	response, err := s.chat.Chat(ctx, judgeSystemPrompt, prompt, judgeTemperature, judgeMaxTokens)
	if err != nil {
		log.Printf("judge call failed for %s, defaulting to %d: %v", botName, defaultScore, err)
		return defaultScore
	}
	return parseScore(response)
}

// parseScore extracts the first run of digits and clamps it to [1,10].
func parseScore(response string) int {
	match := digitRun.FindString(response)
	if match == "" {
		return defaultScore
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return defaultScore
	}
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// RoundVerses holds both bots' judged verses for one round, as fed to the
// commentary prompt.
type RoundVerses struct {
	Bot1Name  string
	Bot2Name  string
	Bot1Verse string
	Bot2Verse string
	Bot1Score int
	Bot2Score int
	// Cumulative scores before this round; unused for round 1.
	PriorBot1Total int
	PriorBot2Total int
}

// Commentary produces DJ commentary for a completed round. Round 1 hypes
// the opening exchange without score context; later rounds quote the
// verses and running scores.
func (s *VerseService) Commentary(ctx context.Context, round int, rv RoundVerses) (string, error) {
	var prompt string
	switch round {
	case 1:
		prompt = fmt.Sprintf(`You are DJ Claudius. The battle is ON! %s and %s just traded opening verses.

%s:
"%s"

%s:
"%s"

Write 2-3 sentences of hype commentary about this opening exchange. Reference their bars!`,
			rv.Bot1Name, rv.Bot2Name, rv.Bot1Name, rv.Bot1Verse, rv.Bot2Name, rv.Bot2Verse)
	case 2:
		prompt = fmt.Sprintf(`You are DJ Claudius. Round 2 is done! Running scores: %s %d, %s %d

%s (%d/10):
"%s"

%s (%d/10):
"%s"

Write 2-3 sentences of commentary about these bars. Reference their wordplay and the momentum shift!`,
			rv.Bot1Name, rv.PriorBot1Total, rv.Bot2Name, rv.PriorBot2Total,
			rv.Bot1Name, rv.Bot1Score, rv.Bot1Verse,
			rv.Bot2Name, rv.Bot2Score, rv.Bot2Verse)
	default:
		prompt = fmt.Sprintf(`You are DJ Claudius. FINAL ROUND! Scores before this: %s %d, %s %d

%s (%d/10):
"%s"

%s (%d/10):
"%s"

Write 2-3 sentences of dramatic closing commentary. Reference their final bars and declare who won!`,
			rv.Bot1Name, rv.PriorBot1Total, rv.Bot2Name, rv.PriorBot2Total,
			rv.Bot1Name, rv.Bot1Score, rv.Bot1Verse,
			rv.Bot2Name, rv.Bot2Score, rv.Bot2Verse)
	}

	return s.chat.Chat(ctx, commentarySystemPrompt, prompt, commentaryTemperature, commentaryMaxTokens)
}
