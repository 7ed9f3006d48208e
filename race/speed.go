/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"math"
	"strings"
	"time"
)

// Below this, elapsed time is treated as zero and speed reported as 0.
const minElapsed = time.Millisecond

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Speed returns words per minute for the whole typed buffer over the time
// elapsed since the race started. It is cumulative: every call recounts
// typed from the beginning.
func Speed(typed string, elapsed time.Duration) int {
	if elapsed < minElapsed {
		return 0
	}

	wpm := float64(WordCount(typed)) / elapsed.Minutes()
	if math.IsNaN(wpm) || math.IsInf(wpm, 0) || wpm < 0 {
		return 0
	}

	if wpm > math.MaxInt32 {
		return math.MaxInt32
	}

	return int(math.Round(wpm))
}

// clampProgress bounds a reported percentage to [0,100].
func clampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}

	return p
}
