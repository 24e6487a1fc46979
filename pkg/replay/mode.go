package replay

import (
	"fmt"
	"strings"
)

// RecordMode decides what happens when no replayable entry exists.
type RecordMode string

const (
	// NewEpisodes sends unknown requests to the live transport and records them.
	NewEpisodes RecordMode = "new-episodes"
	// OnlyReplay refuses every request that cannot be answered from disk.
	OnlyReplay RecordMode = "only-replay"
)

// IsValid checks if the mode is valid.
func (m RecordMode) IsValid() bool {
	switch m {
	case NewEpisodes, OnlyReplay:
		return true
	default:
		return false
	}
}

// AllowsRecording reports whether live calls are permitted.
func (m RecordMode) AllowsRecording() bool {
	return m != OnlyReplay
}

func (m RecordMode) String() string {
	return string(m)
}

// ParseRecordMode parses a mode name. The empty string selects NewEpisodes.
func ParseRecordMode(s string) (RecordMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "new-episodes", "new_episodes", "newepisodes":
		return NewEpisodes, nil
	case "only-replay", "only_replay", "onlyreplay", "replay":
		return OnlyReplay, nil
	default:
		return "", fmt.Errorf("unknown record mode %q (expected new-episodes or only-replay)", s)
	}
}
