package mcname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid("Notch"))
	assert.True(t, Valid("jeb_"))
	assert.True(t, Valid("x1"))
	assert.True(t, Valid("Sixteen_chars_ab"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("seventeen_chars_x"))
	assert.False(t, Valid("has space"))
	assert.False(t, Valid("dash-name"))
	assert.False(t, Valid("émile"))
}
