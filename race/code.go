/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package race

import (
	"crypto/rand"
	"strings"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultCodeLength = 6
	MinCodeLength     = 4
	MaxCodeLength     = 12
)

// Bytes at or above this would favour the first few letters.
const codeCutoff = 256 - 256%len(codeLetters)

// newCode returns a random room code of length n drawn from codeLetters.
func newCode(n int) string {
	return codeFrom(rand.Read, n)
}

// codeFrom maps bytes from read onto codeLetters, discarding any byte that
// would bias the result.
func codeFrom(read func([]byte) (int, error), n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		m, _ := read(buf)

		for _, b := range buf[:m] {
			if int(b) >= codeCutoff {
				continue
			}

			out = append(out, codeLetters[int(b)%len(codeLetters)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}

// NormalizeCode folds a user-typed room code to its canonical form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
