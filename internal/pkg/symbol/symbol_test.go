package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPaired(t *testing.T) {
	assert.True(t, IsPaired("BTC/USD"))
	assert.False(t, IsPaired("QQQ"))
	assert.False(t, IsPaired(""))
}

func TestForPositionQuery(t *testing.T) {
	assert.Equal(t, "BTCUSD", ForPositionQuery("BTC/USD"))
	assert.Equal(t, "QQQ", ForPositionQuery("QQQ"))
	assert.Equal(t, "ABC", ForPositionQuery("A/B/C"))
}
