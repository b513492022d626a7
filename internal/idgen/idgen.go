// Package idgen derives short hash-based task IDs and hierarchical subtask IDs.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SuffixLength is the fixed length of the hash suffix on top-level IDs.
const SuffixLength = 4

// EncodeBase36 converts a byte slice to a base36 string of the given length.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	// Build the digits in reverse
	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var result strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	// Keep least significant digits when over length
	if len(str) > length {
		str = str[len(str)-length:]
	}

	return str
}

// New creates a hash-based task ID of the form "<prefix>-xxxx".
// The suffix is derived from the task content, creation time, and a nonce;
// callers bump the nonce to resolve collisions against the store.
func New(prefix, title string, timestamp time.Time, nonce int) string {
	content := fmt.Sprintf("%s|%d|%d", title, timestamp.UnixNano(), nonce)
	hash := sha256.Sum256([]byte(content))
	// 3 bytes = 24 bits, comfortably covers 4 base36 chars (~20.7 bits)
	return fmt.Sprintf("%s-%s", prefix, EncodeBase36(hash[:3], SuffixLength))
}

// Child produces the hierarchical ID for the n-th subtask of parentID.
func Child(parentID string, n int) string {
	return fmt.Sprintf("%s.%d", parentID, n)
}

// SplitChild splits a hierarchical ID into its parent ID and child number.
// Returns ok=false for top-level IDs. The parent ID itself may be
// hierarchical (subtasks of subtasks).
func SplitChild(id string) (parentID string, n int, ok bool) {
	lastDot := strings.LastIndex(id, ".")
	if lastDot <= 0 || lastDot == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[lastDot+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:lastDot], n, true
}

// ValidatePrefix rejects prefixes that would make IDs ambiguous or
// unparseable: empty, containing separators, or containing whitespace.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix cannot be empty")
	}
	if strings.ContainsAny(prefix, ". ,\t\n") {
		return fmt.Errorf("prefix cannot contain dots, commas, or whitespace: %q", prefix)
	}
	return nil
}
