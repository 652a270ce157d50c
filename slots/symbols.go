package slots

import (
	log "github.com/sirupsen/logrus"
)

// Symbol is a single reel face.
type Symbol string

const (
	SymbolCherry  Symbol = "cherry"
	SymbolLemon   Symbol = "lemon"
	SymbolOrange  Symbol = "orange"
	SymbolGrape   Symbol = "grape"
	SymbolBell    Symbol = "bell"
	SymbolBar     Symbol = "bar"
	SymbolSeven   Symbol = "seven"
	SymbolJackpot Symbol = "jackpot"
)

// symbolWeights is the regular draw table. The jackpot symbol is never drawn
// from here; it has its own fixed base probability per draw.
var symbolWeights = []struct {
	Symbol Symbol
	Weight int
}{
	{SymbolCherry, 30},
	{SymbolLemon, 25},
	{SymbolOrange, 20},
	{SymbolGrape, 12},
	{SymbolBell, 8},
	{SymbolBar, 4},
	{SymbolSeven, 1},
}

// symbolPoints is the per-symbol point table used as the tie-break baseline
// within a score category.
var symbolPoints = map[Symbol]int64{
	SymbolCherry:  1,
	SymbolLemon:   2,
	SymbolOrange:  3,
	SymbolGrape:   4,
	SymbolBell:    5,
	SymbolBar:     10,
	SymbolSeven:   20,
	SymbolJackpot: 50,
}

// Points returns the point value of a symbol. An unknown symbol is treated as
// data corruption: it is logged and scored as zero rather than crashing the
// command that hit it.
func Points(s Symbol) int64 {
	points, ok := symbolPoints[s]
	if !ok {
		log.WithField("symbol", s).Error("unknown symbol in point table lookup")
		return 0
	}
	return points
}
