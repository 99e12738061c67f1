package handlers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		code := generateInviteCode()
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	// 4 random bytes make 64 collisions vanishingly unlikely
	assert.Greater(t, len(seen), 1)
}
