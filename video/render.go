package video

import "github.com/ts95/GameBoyEmu/addr"
import "github.com/ts95/GameBoyEmu/bit"

// renderScanline draws one full scanline (background, window, sprites) into
// the framebuffer, following the fixed LCDC-driven pipeline. Called once
// per line, at the PIXEL_TRANSFER->HBLANK transition.
func (p *PPU) renderScanline(ly int) {
	lcdc := p.bus.Read(addr.LCDC)
	if !bit.IsSet(7, lcdc) {
		p.fb.ClearLine(ly)
		return
	}

	bgEnabled := bit.IsSet(0, lcdc)
	windowEnabledFlag := bit.IsSet(5, lcdc)
	spriteEnabled := bit.IsSet(1, lcdc)
	spriteHeight := 8
	if bit.IsSet(2, lcdc) {
		spriteHeight = 16
	}
	bgTileMapBase := uint16(0x9800)
	if bit.IsSet(3, lcdc) {
		bgTileMapBase = 0x9C00
	}
	winTileMapBase := uint16(0x9800)
	if bit.IsSet(6, lcdc) {
		winTileMapBase = 0x9C00
	}
	unsignedMode := bit.IsSet(4, lcdc)

	scy := p.bus.Read(addr.SCY)
	scx := p.bus.Read(addr.SCX)
	wy := p.bus.Read(addr.WY)
	wx := p.bus.Read(addr.WX)
	windowEnabled := windowEnabledFlag && wy <= uint8(ly) && wx <= 166

	bgp := p.bus.Read(addr.BGP)

	var rawColor [FramebufferWidth]uint8
	windowDrawnThisLine := false

	for x := 0; x < FramebufferWidth; x++ {
		var colorIndex uint8

		switch {
		case windowEnabled && x+7 >= int(wx):
			windowDrawnThisLine = true
			winX := x - (int(wx) - 7)
			colorIndex = p.sampleTile(winTileMapBase, unsignedMode, winX, p.windowLine)
		case bgEnabled:
			bgY := (ly + int(scy)) & 0xFF
			bgX := (x + int(scx)) & 0xFF
			colorIndex = p.sampleTile(bgTileMapBase, unsignedMode, bgX, bgY)
		}

		rawColor[x] = colorIndex
		p.fb.SetPixel(x, ly, ApplyPalette(bgp, colorIndex))
	}

	if windowDrawnThisLine {
		p.windowLine++
	}

	if spriteEnabled {
		p.renderSprites(ly, spriteHeight, rawColor[:])
	}
}

// sampleTile resolves the tile covering pixel (x, y) of a 256x256 tile map
// and returns the raw (unpaletted) color index at that pixel.
func (p *PPU) sampleTile(tileMapBase uint16, unsignedMode bool, x, y int) uint8 {
	tileCol := x / 8
	tileRow := y / 8
	mapAddr := tileMapBase + uint16(tileRow*32+tileCol)
	tileIndex := p.bus.Read(mapAddr)
	tileAddr := TileDataAddress(unsignedMode, tileIndex)
	row := FetchTileRow(p.bus, tileAddr, y%8)
	return row.ColorIndex(x % 8)
}

// renderSprites overlays the sprites visible on this scanline atop the
// background/window pixels already written to rawColor, applying
// sprite-vs-sprite priority (already resolved into each sprite's
// PixelMask) and sprite-vs-background priority (the BehindBG attribute).
func (p *PPU) renderSprites(ly, spriteHeight int, rawColor []uint8) {
	sprites := p.oam.ScanLine(ly, spriteHeight)
	obp0 := p.bus.Read(addr.OBP0)
	obp1 := p.bus.Read(addr.OBP1)

	for i := range sprites {
		sprite := &sprites[i]

		rowInSprite := ly - int(sprite.Y)
		if sprite.FlipY {
			rowInSprite = sprite.Height - 1 - rowInSprite
		}

		tileIndex := sprite.TileIndex
		if sprite.Height == 16 {
			tileIndex &^= 1
			if rowInSprite >= 8 {
				tileIndex |= 1
				rowInSprite -= 8
			}
		}
		tileAddr := 0x8000 + uint16(tileIndex)*16
		row := FetchTileRow(p.bus, tileAddr, rowInSprite)

		palette := obp0
		if sprite.PaletteOBP1 {
			palette = obp1
		}

		for column := 0; column < 8; column++ {
			if !sprite.HasPriorityForColumn(column) {
				continue
			}
			screenX := int(sprite.X) + column
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}

			var colorIndex uint8
			if sprite.FlipX {
				colorIndex = row.ColorIndexFlipped(column)
			} else {
				colorIndex = row.ColorIndex(column)
			}
			if colorIndex == 0 {
				continue
			}
			if sprite.BehindBG && rawColor[screenX] != 0 {
				continue
			}

			p.fb.SetPixel(screenX, ly, ApplyPalette(palette, colorIndex))
		}
	}
}
