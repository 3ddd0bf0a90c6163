package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 20, Offset(2, 20))
	assert.Equal(t, 90, Offset(10, 10))
	// Pages below 1 clamp to the first page.
	assert.Equal(t, 0, Offset(0, 20))
	assert.Equal(t, 0, Offset(-5, 20))
}

func TestHasMore(t *testing.T) {
	assert.True(t, HasMore(1, 20, 21))
	assert.False(t, HasMore(1, 20, 20))
	assert.False(t, HasMore(2, 20, 40))
	assert.True(t, HasMore(2, 20, 41))
	assert.False(t, HasMore(1, 20, 0))
	// Large page numbers must not overflow the comparison.
	assert.False(t, HasMore(1<<30, 1<<30, 1<<40))
}
