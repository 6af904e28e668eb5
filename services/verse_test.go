package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clawcypher/models"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		response string
		want     int
	}{
		{"7", 7},
		{" 9 ", 9},
		{"I'd rate this verse an 8 out of 10", 8},
		{"10", 10},
		{"1", 1},
		{"0", 1},         // clamped up
		{"15", 10},       // clamped down
		{"no digits", 5}, // default
		{"", 5},
	}

	for _, tc := range cases {
		if got := parseScore(tc.response); got != tc.want {
			t.Errorf("parseScore(%q) = %d, want %d", tc.response, got, tc.want)
		}
	}
}

func TestJudgeDefaultsOnError(t *testing.T) {
	svc := NewVerseService(&erroringChat{})

	score := svc.Judge(context.Background(), "some bars", "MC One", "MC Two")
	if score != defaultScore {
		t.Errorf("Judge on failing client = %d, want %d", score, defaultScore)
	}
}

func TestJudgeAlwaysInRange(t *testing.T) {
	responses := []string{"11", "0", "-3", "9000", "solid 6", "meh"}
	chat := &fakeChat{judgeResponses: responses}
	svc := NewVerseService(chat)

	for range responses {
		score := svc.Judge(context.Background(), "bars", "A", "B")
		if score < 1 || score > 10 {
			t.Errorf("Judge returned %d, want within [1,10]", score)
		}
	}
}

func TestGeneratePhasePrompts(t *testing.T) {
	chat := &fakeChat{}
	svc := NewVerseService(chat)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "Byte", "glitchy", "Crash", models.VerseOpening, nil); err != nil {
		t.Fatalf("opening generation failed: %v", err)
	}
	if !strings.Contains(chat.lastUserPrompts[0], "opening verse") {
		t.Errorf("opening prompt missing phase wording: %q", chat.lastUserPrompts[0])
	}

	if _, err := svc.Generate(ctx, "Byte", "glitchy", "Crash", models.VerseComeback, []string{"earlier bars"}); err != nil {
		t.Fatalf("comeback generation failed: %v", err)
	}
	prompt := chat.lastUserPrompts[1]
	if !strings.Contains(prompt, "comeback verse") || !strings.Contains(prompt, "earlier bars") {
		t.Errorf("comeback prompt missing phase wording or context: %q", prompt)
	}

	if _, err := svc.Generate(ctx, "Byte", "glitchy", "Crash", models.VerseFinal, []string{"r1", "r2"}); err != nil {
		t.Fatalf("final generation failed: %v", err)
	}
	prompt = chat.lastUserPrompts[2]
	if !strings.Contains(prompt, "final verse") || !strings.Contains(prompt, "r2") {
		t.Errorf("final prompt missing phase wording or context: %q", prompt)
	}

	if _, err := svc.Generate(ctx, "Byte", "glitchy", "Crash", "freestyle", nil); err == nil {
		t.Error("expected error for unknown verse type")
	}
}

func TestGeneratePropagatesFailure(t *testing.T) {
	svc := NewVerseService(&erroringChat{})
	if _, err := svc.Generate(context.Background(), "Byte", "glitchy", "Crash", models.VerseOpening, nil); err == nil {
		t.Error("expected generation failure to propagate")
	}
}

func TestCommentaryRoundTemplates(t *testing.T) {
	chat := &fakeChat{}
	svc := NewVerseService(chat)
	ctx := context.Background()

	rv := RoundVerses{
		Bot1Name: "Byte", Bot2Name: "Crash",
		Bot1Verse: "v1", Bot2Verse: "v2",
		Bot1Score: 8, Bot2Score: 6,
		PriorBot1Total: 15, PriorBot2Total: 12,
	}

	if _, err := svc.Commentary(ctx, 1, rv); err != nil {
		t.Fatalf("round 1 commentary failed: %v", err)
	}
	if strings.Contains(chat.lastUserPrompts[0], "15") {
		t.Errorf("round 1 prompt should not reference running scores: %q", chat.lastUserPrompts[0])
	}

	if _, err := svc.Commentary(ctx, 2, rv); err != nil {
		t.Fatalf("round 2 commentary failed: %v", err)
	}
	prompt := chat.lastUserPrompts[1]
	if !strings.Contains(prompt, "15") || !strings.Contains(prompt, `"v1"`) {
		t.Errorf("round 2 prompt missing scores or quoted verse: %q", prompt)
	}

	if _, err := svc.Commentary(ctx, 3, rv); err != nil {
		t.Fatalf("round 3 commentary failed: %v", err)
	}
	if !strings.Contains(chat.lastUserPrompts[2], "FINAL ROUND") {
		t.Errorf("round 3 prompt missing final-round framing: %q", chat.lastUserPrompts[2])
	}
}

// erroringChat fails every call.
type erroringChat struct{}

func (e *erroringChat) Chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	return "", errors.New("upstream unavailable")
}
