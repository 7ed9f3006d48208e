/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultTexts are used when no passage file is configured.
var DefaultTexts = []string{
	"The quick brown fox jumps over the lazy dog near the riverbank where the sun sets beautifully.",
	"Programming is the art of telling another human what one wants the computer to do with precision.",
	"In the digital age, typing speed and accuracy have become essential skills for productivity.",
	"WebSocket technology enables real-time bidirectional communication between client and server.",
	"Practice makes perfect, and consistency is the key to improving your typing speed over time.",
}

var ErrNoTexts = errors.New("no race texts found")

// LoadTexts reads one passage per line from path, skipping blank lines and
// lines starting with '#'.
func LoadTexts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTexts)
	}

	return texts, nil
}
