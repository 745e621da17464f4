package video

import "github.com/ts95/GameBoyEmu/bit"

// TileRow is one 8-pixel row of a tile pattern, stored as the two
// bit-plane bytes VRAM actually holds: bit 7 of each byte is the leftmost
// pixel, bit 0 the rightmost, and a pixel's 2-bit color index is
// (high-bit<<1 | low-bit).
type TileRow struct {
	Low  byte
	High byte
}

// ColorIndex extracts the pixel at pixelX (0 = leftmost) as a value 0-3.
func (t TileRow) ColorIndex(pixelX int) uint8 {
	bitIndex := uint8(7 - pixelX)
	var idx uint8
	if bit.IsSet(bitIndex, t.Low) {
		idx |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		idx |= 2
	}
	return idx
}

// ColorIndexFlipped is ColorIndex with the row read right-to-left, for
// sprites drawn with the X-flip attribute.
func (t TileRow) ColorIndexFlipped(pixelX int) uint8 {
	return t.ColorIndex(7 - pixelX)
}

// TileReader is the minimal read access the pixel pipeline needs from the
// bus to fetch tile bytes.
type TileReader interface {
	Read(address uint16) byte
}

// FetchTileRow reads the two bytes of tile row `row` (0-7) starting at
// tileAddr, the address of the tile's first byte.
func FetchTileRow(mem TileReader, tileAddr uint16, row int) TileRow {
	rowAddr := tileAddr + uint16(row*2)
	return TileRow{
		Low:  mem.Read(rowAddr),
		High: mem.Read(rowAddr + 1),
	}
}

// TileDataAddress resolves a background/window tile index to the address
// of its first byte, honoring LCDC bit 4's two addressing modes: unsigned
// indices off 0x8000, or signed indices off 0x9000.
func TileDataAddress(unsignedMode bool, tileIndex uint8) uint16 {
	if unsignedMode {
		return 0x8000 + uint16(tileIndex)*16
	}
	return uint16(int32(0x9000) + int32(int8(tileIndex))*16)
}
