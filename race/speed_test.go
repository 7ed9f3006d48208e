/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"math"
	"testing"
	"time"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"  one two  ", 2},
		{"one\ttwo\nthree   four", 4},
		{"half-typed wor", 2},
	}

	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		name    string
		typed   string
		elapsed time.Duration
		want    int
	}{
		{"zero elapsed", "one two three", 0, 0},
		{"sub-millisecond", "one two three", time.Microsecond, 0},
		{"negative elapsed", "one two", -time.Second, 0},
		{"half minute", "one two three four five", 30 * time.Second, 10},
		{"one minute", "a b c d e f g h i j", time.Minute, 10},
		{"rounds", "a b", 45 * time.Second, 3},
		{"nothing typed", "", time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Speed(tt.typed, tt.elapsed); got != tt.want {
				t.Fatalf("Speed(%q, %s) = %d, want %d", tt.typed, tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestSpeedIsCumulative(t *testing.T) {
	early := Speed("one two", 10*time.Second)
	late := Speed("one two three four", 20*time.Second)

	if early != 12 || late != 12 {
		t.Fatalf("expected whole-buffer rate of 12 both times, got %d and %d", early, late)
	}
}

func TestClampProgress(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{100.1, 100},
		{math.Inf(1), 100},
	}

	for _, tt := range tests {
		if got := clampProgress(tt.in); got != tt.want {
			t.Errorf("clampProgress(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := clampProgress(math.NaN()); got != 0 {
		t.Errorf("clampProgress(NaN) = %v, want 0", got)
	}
}
