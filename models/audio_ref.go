package models

import "strings"

// AudioState enumerates the lifecycle of a verse's audio rendering.
type AudioState int

const (
	AudioNone AudioState = iota
	AudioPending
	AudioReady
)

// pendingPrefix tags an outstanding media job in the stored audio field.
// Existing rows written by earlier deployments use the same encoding.
const pendingPrefix = "pending:"

// AudioRef is the typed view of a verse's audio reference. The store keeps
// a single string column; translation happens only here.
type AudioRef struct {
	State AudioState
	JobID string // set when State == AudioPending
	URL   string // set when State == AudioReady
}

// ParseAudioRef decodes the legacy string encoding.
func ParseAudioRef(s string) AudioRef {
	if s == "" {
		return AudioRef{State: AudioNone}
	}
	if strings.HasPrefix(s, pendingPrefix) {
		return AudioRef{State: AudioPending, JobID: strings.TrimPrefix(s, pendingPrefix)}
	}
	return AudioRef{State: AudioReady, URL: s}
}

// Encode returns the string form written to the store.
func (r AudioRef) Encode() string {
	switch r.State {
	case AudioPending:
		return pendingPrefix + r.JobID
	case AudioReady:
		return r.URL
	default:
		return ""
	}
}

// PendingAudio builds a pending reference for a submitted job.
func PendingAudio(jobID string) AudioRef {
	return AudioRef{State: AudioPending, JobID: jobID}
}

// ReadyAudio builds a resolved reference.
func ReadyAudio(url string) AudioRef {
	return AudioRef{State: AudioReady, URL: url}
}
