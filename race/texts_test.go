/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadTexts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.txt")

	data := "# passages\n\n  first passage  \nsecond passage\n\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	texts, err := LoadTexts(path)
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}

	if want := []string{"first passage", "second passage"}; !slices.Equal(texts, want) {
		t.Fatalf("expected %q, got %q", want, texts)
	}
}

func TestLoadTextsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadTexts(path); !errors.Is(err, ErrNoTexts) {
		t.Fatalf("expected ErrNoTexts, got %v", err)
	}

	if _, err := LoadTexts(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  ab12cd \n"); got != "AB12CD" {
		t.Fatalf("expected AB12CD, got %q", got)
	}
}

func TestNewCode(t *testing.T) {
	code := newCode(DefaultCodeLength)
	if len(code) != DefaultCodeLength {
		t.Fatalf("expected %d characters, got %q", DefaultCodeLength, code)
	}

	for _, r := range code {
		if !slices.Contains([]rune(codeLetters), r) {
			t.Fatalf("unexpected character %q in %q", r, code)
		}
	}

	if NormalizeCode(code) != code {
		t.Fatalf("generated codes must already be normalized: %q", code)
	}
}

// byteStream hands out bytes in order, a few at a time.
func byteStream(data ...byte) func([]byte) (int, error) {
	return func(p []byte) (int, error) {
		n := copy(p[:min(len(p), 2)], data)
		data = data[n:]

		return n, nil
	}
}

func TestCodeFromDiscardsBiasedBytes(t *testing.T) {
	read := byteStream(252, 0, 255, 35, 253, 36, 251, 254, 1)

	if got := codeFrom(read, 4); got != "A9A9" {
		t.Fatalf("expected A9A9, got %q", got)
	}
}

func TestCodeFromCoversAlphabetEvenly(t *testing.T) {
	data := make([]byte, 0, 256)
	for b := range 256 {
		data = append(data, byte(b))
	}

	counts := make(map[byte]int)
	for _, c := range []byte(codeFrom(byteStream(data...), codeCutoff)) {
		counts[c]++
	}

	if len(counts) != len(codeLetters) {
		t.Fatalf("expected all %d letters, got %d", len(codeLetters), len(counts))
	}
	for c, n := range counts {
		if n != codeCutoff/len(codeLetters) {
			t.Fatalf("letter %q drawn %d times, want %d", c, n, codeCutoff/len(codeLetters))
		}
	}
}
