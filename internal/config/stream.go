package config

import "time"

type StreamConfig struct {
	// WordsPerChunk is the word group size used when simulating a stream.
	WordsPerChunk int
	// ChunkDelay is the pause between simulated content chunks.
	ChunkDelay time.Duration
}

func GetStreamConfig() StreamConfig {
	words := parseEnvInt("SIMULATED_CHUNK_WORDS", 3)
	if words < 1 {
		words = 3
	}

	return StreamConfig{
		WordsPerChunk: words,
		ChunkDelay:    parseEnvDuration("SIMULATED_CHUNK_DELAY", 50*time.Millisecond),
	}
}
