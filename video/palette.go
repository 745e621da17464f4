package video

import "github.com/ts95/GameBoyEmu/bit"

// ApplyPalette maps a raw 2-bit tile color index through a palette register
// (BGP/OBP0/OBP1), each of which packs four 2-bit shades low-to-high.
func ApplyPalette(palette uint8, colorIndex uint8) uint8 {
	shift := colorIndex * 2
	return bit.Field(palette, shift+1, shift)
}
