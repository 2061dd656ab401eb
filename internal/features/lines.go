package features

import (
	. "github.com/janpfeifer/fourGo/internal/state"
)

// lineDirections are the directions of the lines scored by LinesScore: rows, columns and one diagonal.
var lineDirections = [3][2]int{{1, 0}, {0, 1}, {1, 1}}

// LinesScore sums, over every row, column and up-right diagonal of the board, the open runs of player.
//
// Walking each line from its start, a counter holds the pieces of player seen since the last opponent piece.
// At every cell at least 4 cells away from the last opponent piece (or from before the start of the line),
// the counter is added to the score.
func LinesScore(b Board, player Player) float64 {
	width, height := b.Width(), b.Height()
	var total float64
	for _, dir := range lineDirections {
		for x := range width {
			for y := range height {
				// Lines start at cells whose predecessor is outside the board.
				px, py := x-dir[0], y-dir[1]
				if px >= 0 && py >= 0 && px < width && py < height {
					continue
				}
				total += lineValue(b, x, y, dir[0], dir[1], player)
			}
		}
	}
	return total
}

// lineValue scores the line starting at (x, y) going in the direction (dx, dy).
func lineValue(b Board, x, y, dx, dy int, player Player) float64 {
	lastOpponent := -1
	count := 0
	var value float64
	for ii := 0; x >= 0 && y >= 0 && x < b.Width() && y < b.Height(); ii++ {
		switch b.Cell(x, y) {
		case NoPlayer:
		case player:
			count++
		default:
			lastOpponent = ii
			count = 0
		}
		if ii-lastOpponent >= 4 {
			value += float64(count)
		}
		x, y = x+dx, y+dy
	}
	return value
}
