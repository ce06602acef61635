package renderer

import (
	"image"
	"math/rand"
)

// Tile is a rectangle of pixels rendered as one task. Each tile owns its random generator.
type Tile struct {
	ID     int
	Bounds image.Rectangle // image coordinates, row 0 at the top
	Random *rand.Rand
}

// NewTile creates a tile whose generator is seeded with seed
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: rand.New(rand.NewSource(seed)),
	}
}

// NewTileGrid covers the image with tiles in row-major order.
// Tile i is seeded with baseSeed + i.
func NewTileGrid(width, height, tileSize int, baseSeed int64) []*Tile {
	var tiles []*Tile
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			bounds := image.Rect(x0, y0, min(x0+tileSize, width), min(y0+tileSize, height))
			id := len(tiles)
			tiles = append(tiles, NewTile(id, bounds, baseSeed+int64(id)))
		}
	}
	return tiles
}
