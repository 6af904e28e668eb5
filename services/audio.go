package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"clawcypher/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audio tracker statuses as exposed to clients.
const (
	AudioStatusReady      = "ready"
	AudioStatusProcessing = "processing"
	AudioStatusFailed     = "failed"
	AudioStatusNoAudio    = "no_audio"
)

// AudioService tracks asynchronous audio rendering per verse: it submits
// jobs to the media-generation service and resolves pending markers when
// polled.
type AudioService struct {
	store     Store
	media     MediaClient
	maxLyrics int
}

// NewAudioService wires the tracker to its store and media client.
// maxLyrics is the remote service's input-length limit.
func NewAudioService(store Store, media MediaClient, maxLyrics int) *AudioService {
	return &AudioService{store: store, media: media, maxLyrics: maxLyrics}
}

// SubmitResult is the outcome of a submit call.
type SubmitResult struct {
	Status   string `json:"status"`
	JobID    string `json:"job_id,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	Cached   bool   `json:"cached"`
}

// AudioStatus is the outcome of a poll call.
type AudioStatus struct {
	Status    string `json:"status"`
	AudioURL  string `json:"audio_url,omitempty"`
	JobStatus string `json:"job_status,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// lyricPayload builds the media job input: the verse text truncated to
// the service's limit, wrapped in the lyric section tag it expects.
func (s *AudioService) lyricPayload(verseText, botName string) map[string]any {
	text := verseText
	if s.maxLyrics > 0 && len(text) > s.maxLyrics {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		limit := s.maxLyrics
		for limit > 0 && !utf8.RuneStart(text[limit]) {
			limit--
		}
		text = text[:limit]
	}
	return map[string]any{
		"lyrics": "##\n" + text + "\n##",
		"prompt": fmt.Sprintf("%s performing a rap verse. Hip-hop beat with clear vocals.", botName),
	}
}

// SubmitForVerse requests audio rendering for a verse. It is idempotent:
// a verse that is already ready or has an outstanding job returns the
// existing reference without contacting the remote service.
func (s *AudioService) SubmitForVerse(ctx context.Context, verseID primitive.ObjectID) (*SubmitResult, error) {
	verse, err := s.store.GetVerse(ctx, verseID)
	if err != nil {
		return nil, fmt.Errorf("verse %s: %w", verseID.Hex(), err)
	}

	switch ref := verse.Audio(); ref.State {
	case models.AudioReady:
		return &SubmitResult{Status: AudioStatusReady, AudioURL: ref.URL, Cached: true}, nil
	case models.AudioPending:
		return &SubmitResult{Status: AudioStatusProcessing, JobID: ref.JobID, Cached: true}, nil
	}

	bot, err := s.store.GetBot(ctx, verse.BotID)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", verse.BotID.Hex(), err)
	}

	prediction, err := s.media.CreatePrediction(ctx, s.lyricPayload(verse.VerseText, bot.Name))
	if err != nil {
		return nil, fmt.Errorf("audio job submission failed: %w", err)
	}

	marker := models.PendingAudio(prediction.ID).Encode()
	for attempt := 0; ; attempt++ {
		claimed, err := s.store.ClaimVerseAudio(ctx, verseID, marker)
		if err != nil {
			return nil, fmt.Errorf("failed to store pending marker: %w", err)
		}
		if claimed {
			break
		}

		// A concurrent submit won the claim; converge on its job.
		current, err := s.store.GetVerse(ctx, verseID)
		if err != nil {
			return nil, fmt.Errorf("verse %s: %w", verseID.Hex(), err)
		}
		switch ref := current.Audio(); ref.State {
		case models.AudioReady:
			return &SubmitResult{Status: AudioStatusReady, AudioURL: ref.URL, Cached: true}, nil
		case models.AudioPending:
			return &SubmitResult{Status: AudioStatusProcessing, JobID: ref.JobID, Cached: true}, nil
		}

		// The competing reference was cleared before the re-read (a poll
		// failed in between); claim again so the running job is tracked.
		if attempt == 1 {
			log.Printf("audio job %s for verse %s left untracked after claim retries", prediction.ID, verseID.Hex())
			break
		}
	}

	log.Printf("audio job %s submitted for verse %s", prediction.ID, verseID.Hex())
	return &SubmitResult{Status: AudioStatusProcessing, JobID: prediction.ID}, nil
}

// SubmitRaw submits a rendering job for free-standing text with a voice
// label. Nothing is persisted; callers poll by job id.
func (s *AudioService) SubmitRaw(ctx context.Context, text, voice string) (*SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	prediction, err := s.media.CreatePrediction(ctx, s.lyricPayload(text, voice))
	if err != nil {
		return nil, fmt.Errorf("audio job submission failed: %w", err)
	}
	return &SubmitResult{Status: AudioStatusProcessing, JobID: prediction.ID}, nil
}

// Status resolves a verse's audio reference. A pending marker triggers a
// remote poll; terminal failures clear the reference back to none so the
// caller can resubmit.
func (s *AudioService) Status(ctx context.Context, verseID primitive.ObjectID) (*AudioStatus, error) {
	verse, err := s.store.GetVerse(ctx, verseID)
	if err != nil {
		return nil, fmt.Errorf("verse %s: %w", verseID.Hex(), err)
	}

	ref := verse.Audio()
	switch ref.State {
	case models.AudioNone:
		return &AudioStatus{Status: AudioStatusNoAudio}, nil
	case models.AudioReady:
		return &AudioStatus{Status: AudioStatusReady, AudioURL: ref.URL}, nil
	}

	return s.resolvePending(ctx, ref.JobID, &verseID)
}

// StatusByJob polls a raw job id with no backing verse.
func (s *AudioService) StatusByJob(ctx context.Context, jobID string) (*AudioStatus, error) {
	return s.resolvePending(ctx, jobID, nil)
}

func (s *AudioService) resolvePending(ctx context.Context, jobID string, verseID *primitive.ObjectID) (*AudioStatus, error) {
	prediction, err := s.media.GetPrediction(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("audio status check failed: %w", err)
	}

	if prediction.Status == PredictionSucceeded {
		if prediction.DataRemoved {
			s.clearReference(ctx, verseID)
			return &AudioStatus{
				Status:    AudioStatusFailed,
				Error:     "audio output expired before it was collected",
				Retryable: true,
			}, nil
		}

		url, ok := prediction.OutputURL()
		if !ok {
			log.Printf("audio job %s: unexpected output format", jobID)
			s.clearReference(ctx, verseID)
			return &AudioStatus{
				Status:    AudioStatusFailed,
				Error:     "unexpected audio output format",
				Retryable: true,
			}, nil
		}

		if verseID != nil {
			if err := s.store.SetVerseAudio(ctx, *verseID, models.ReadyAudio(url).Encode()); err != nil {
				log.Printf("failed to store audio url for verse %s: %v", verseID.Hex(), err)
			} else {
				log.Printf("verse %s audio ready", verseID.Hex())
			}
		}
		return &AudioStatus{Status: AudioStatusReady, AudioURL: url}, nil
	}

	if prediction.Terminated() {
		s.clearReference(ctx, verseID)
		message := prediction.Error
		if message == "" {
			message = "audio generation " + prediction.Status
		}
		return &AudioStatus{Status: AudioStatusFailed, Error: message, Retryable: true}, nil
	}

	// starting / processing / anything new the service grows.
	return &AudioStatus{Status: AudioStatusProcessing, JobStatus: prediction.Status}, nil
}

// clearReference resets a verse's audio field to none so a failed job can
// be resubmitted without manual intervention.
func (s *AudioService) clearReference(ctx context.Context, verseID *primitive.ObjectID) {
	if verseID == nil {
		return
	}
	if err := s.store.SetVerseAudio(ctx, *verseID, ""); err != nil {
		log.Printf("failed to clear audio reference for verse %s: %v", verseID.Hex(), err)
	}
}
