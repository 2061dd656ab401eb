// Package features implements the board features used by the hand-crafted evaluators.
//
// All features are computed from the point of view of a perspective player, and work for any of the games,
// since they only depend on the cells of the board.
package features

import (
	"fmt"
	. "github.com/janpfeifer/fourGo/internal/state"
	"log"
	"math"
	"strings"
)

// BoardId represent an enum of board features.
type BoardId uint8

// FeatureSetter is the signature of a feature setter. f is the slice where to store the
// results.
type FeatureSetter func(b Board, perspective Player, def *BoardSpec, f []float64)

const (
	// IdConsecutive holds 3 counts: the number of empty cells from which the player has respectively
	// 1, 2 or 3 (or more) pieces in a row, in at least one of the 4 directions.
	IdConsecutive BoardId = iota
	IdOpponentConsecutive

	// IdNumFeatureIds defined -- this must always be the last enum.
	IdNumFeatureIds
)

// BoardSpec includes the board feature name, dimension and index in the concatenation of features.
type BoardSpec struct {
	Id   BoardId
	Name string
	Dim  int

	// VecIndex refers to the index in the concatenated feature vector.
	VecIndex int
	Setter   FeatureSetter
}

var (
	// BoardSpecs enumerates in order the features extracted by FeatureVector.
	// The VecIndex attribute is properly set during the package initialization.
	// The "Opp" prefix refers to the opponent version of the feature.
	BoardSpecs = [IdNumFeatureIds]BoardSpec{
		{IdConsecutive, "Consecutive", 3, 0, fConsecutive},
		{IdOpponentConsecutive, "OppConsecutive", 3, 0, fConsecutive},
	}

	// BoardFeaturesDim is the dimension of all board features concatenated, set during package
	// initialization.
	BoardFeaturesDim int
)

func init() {
	// Updates the indices of BoardSpecs, and sets BoardFeaturesDim.
	BoardFeaturesDim = 0
	for ii := range BoardSpecs {
		if BoardSpecs[ii].Id != BoardId(ii) {
			log.Fatalf("features.BoardSpecs index %d for %s doesn't match constant.",
				ii, BoardSpecs[ii].Name)
		}
		BoardSpecs[ii].VecIndex = BoardFeaturesDim
		BoardFeaturesDim += BoardSpecs[ii].Dim
	}
}

// SaturationScale bounds the counts features: see Saturate.
const SaturationScale = 10.0

// Saturate maps a count n >= 0 to SaturationScale*(1-exp(-n/SaturationScale)): it is close to n for small
// values, and never reaches SaturationScale.
func Saturate(n float64) float64 {
	return SaturationScale * (1 - math.Exp(-n/SaturationScale))
}

// FeatureVector calculates the feature vector, of length BoardFeaturesDim, for the given
// board from the perspective of the given player.
func FeatureVector(b Board, perspective Player) (f []float64) {
	f = make([]float64, BoardFeaturesDim)
	for ii := range BoardSpecs {
		featDef := &BoardSpecs[ii]
		featDef.Setter(b, perspective, featDef, f)
	}
	return
}

// Describe returns a human-readable version of a vector indexed like the features: it can be a feature vector
// or the weights of a linear model over the features.
func Describe(f []float64) string {
	parts := make([]string, 0, len(BoardSpecs))
	for ii := range BoardSpecs {
		def := &BoardSpecs[ii]
		if def.VecIndex+def.Dim > len(f) {
			break
		}
		parts = append(parts, fmt.Sprintf("%s=%.3g", def.Name, f[def.VecIndex:def.VecIndex+def.Dim]))
	}
	return strings.Join(parts, ", ")
}

// directions used to count pieces in a row. Each is also walked backwards.
var directions = [4][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}

// piecesInRow counts the consecutive pieces of player starting next to (x, y) in the direction (dx, dy).
func piecesInRow(b Board, x, y, dx, dy int, player Player) (count int) {
	for {
		x, y = x+dx, y+dy
		if x < 0 || y < 0 || x >= b.Width() || y >= b.Height() || b.Cell(x, y) != player {
			return
		}
		count++
	}
}

// ConsecutiveCounts returns, for n=1, 2 and 3, how many empty cells would be adjacent to n pieces in a row
// of player (3 includes longer rows), in at least one of the 4 directions.
func ConsecutiveCounts(b Board, player Player) (counts [3]int) {
	for x := range b.Width() {
		for y := range b.Height() {
			if b.Cell(x, y) != NoPlayer {
				continue
			}
			var found [3]bool
			for _, dir := range directions {
				n := piecesInRow(b, x, y, dir[0], dir[1], player) + piecesInRow(b, x, y, -dir[0], -dir[1], player)
				if n >= 1 {
					found[min(n, 3)-1] = true
				}
			}
			for ii, f := range found {
				if f {
					counts[ii]++
				}
			}
		}
	}
	return
}

func fConsecutive(b Board, perspective Player, def *BoardSpec, f []float64) {
	player := perspective
	if def.Id == IdOpponentConsecutive {
		player = perspective.Opponent()
	}
	counts := ConsecutiveCounts(b, player)
	for ii, count := range counts {
		f[def.VecIndex+ii] = Saturate(float64(count))
	}
}
