package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	Use()
	assert.Equal("line 4 failed", From("line %d failed", 4))
	assert.Equal("finger 0x0000002a", From("finger 0x%08x", 42))

	Use("xx-YY", "en-US")
	assert.Equal("plain", From("plain"))
}
