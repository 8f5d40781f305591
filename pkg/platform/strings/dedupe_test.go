package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSet(t *testing.T) {
	assert.Nil(t, NormalizeSet(nil))
	assert.Equal(t, []string{"admin", "user"}, NormalizeSet([]string{" Admin ", "user", "ADMIN", "", "  "}))
	assert.Equal(t, []string{"moderator"}, NormalizeSet([]string{"moderator"}))
}
