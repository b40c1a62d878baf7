package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAligned(t *testing.T) {
	assert.Equal(t, uint64(0), GetAligned(0, 16))
	assert.Equal(t, uint64(16), GetAligned(1, 16))
	assert.Equal(t, uint64(144), GetAligned(144, 16))
	assert.Equal(t, uint64(1344), GetAligned(1330, 16))
}
