package bit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ts95/GameBoyEmu/bit"
)

func TestCombineHighLow(t *testing.T) {
	assert.Equal(t, uint16(0xBEEF), bit.Combine(0xBE, 0xEF))
	assert.Equal(t, uint8(0xBE), bit.High(0xBEEF))
	assert.Equal(t, uint8(0xEF), bit.Low(0xBEEF))
}

func TestSetClearIsSet(t *testing.T) {
	var v uint8
	v = bit.Set(3, v)
	assert.True(t, bit.IsSet(3, v))
	v = bit.Clear(3, v)
	assert.False(t, bit.IsSet(3, v))
}

func TestSetTo(t *testing.T) {
	v := bit.SetTo(0, 0, true)
	assert.Equal(t, uint8(1), v)
	v = bit.SetTo(0, v, false)
	assert.Equal(t, uint8(0), v)
}

func TestField(t *testing.T) {
	// 0b11010110 bits 6:4 -> 0b101
	assert.Equal(t, uint8(0b101), bit.Field(0b11010110, 6, 4))
}
