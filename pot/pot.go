package pot

import (
	"sort"

	"github.com/lazharichir/holdem/hands"
)

// SidePot is one slice of the pot. Eligible lists the non-folded players
// who contributed at least this slice's boundary amount.
type SidePot struct {
	Amount   int
	Eligible []string
}

// Pot tracks per-player chip commitments over a hand and partitions them
// into side pots at all-in boundaries. It is pure data transformation
// driven by the betting state machine; it never blocks.
type Pot struct {
	committed map[string]int
	folded    map[string]bool
	allIns    map[string]int
}

// New creates an empty pot for a fresh hand.
func New() *Pot {
	return &Pot{
		committed: make(map[string]int),
		folded:    make(map[string]bool),
		allIns:    make(map[string]int),
	}
}

// Commit records amount chips committed by the player.
func (p *Pot) Commit(name string, amount int) {
	if amount <= 0 {
		return
	}
	p.committed[name] += amount
}

// Fold marks the player's chips as dead money. The chips stay in the
// pot; the player leaves every eligibility set.
func (p *Pot) Fold(name string) {
	p.folded[name] = true
}

// MarkAllIn records a side pot boundary at the player's total
// commitment so far.
func (p *Pot) MarkAllIn(name string) {
	p.allIns[name] = p.committed[name]
}

// Committed returns the player's total commitment this hand.
func (p *Pot) Committed(name string) int {
	return p.committed[name]
}

// Total returns the sum of all commitments. It always equals the sum of
// all side pot amounts.
func (p *Pot) Total() int {
	total := 0
	for _, amount := range p.committed {
		total += amount
	}
	return total
}

// SidePots partitions the commitments into pots. A boundary exists at
// each distinct all-in amount plus the maximum commitment; the slice
// between two boundaries collects, from every player, the part of their
// commitment that falls inside it.
func (p *Pot) SidePots() []SidePot {
	maxCommitted := 0
	for _, amount := range p.committed {
		if amount > maxCommitted {
			maxCommitted = amount
		}
	}
	if maxCommitted == 0 {
		return nil
	}

	boundarySet := map[int]bool{maxCommitted: true}
	for _, amount := range p.allIns {
		if amount > 0 && amount < maxCommitted {
			boundarySet[amount] = true
		}
	}

	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	pots := make([]SidePot, 0, len(boundaries))
	prev := 0
	for _, boundary := range boundaries {
		pot := SidePot{}
		for name, amount := range p.committed {
			contribution := min(amount, boundary) - min(amount, prev)
			pot.Amount += contribution
			if amount >= boundary && !p.folded[name] {
				pot.Eligible = append(pot.Eligible, name)
			}
		}
		sort.Strings(pot.Eligible)
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = boundary
	}

	return pots
}

// Award resolves the pots at showdown. For each pot the eligible
// players' scores are compared and the amount split equally among the
// tied best; odd chips go one at a time to winners in clockwise order,
// starting from the player immediately clockwise of the button.
// clockwise must list the showdown players in seat order beginning at
// the seat after the button.
func Award(pots []SidePot, scores map[string]hands.HandScore, clockwise []string) map[string]int {
	payouts := make(map[string]int)

	for _, pot := range pots {
		winners := potWinners(pot, scores)
		if len(winners) == 0 {
			continue
		}

		// Order winners clockwise from the button before splitting so
		// the remainder lands deterministically.
		ordered := make([]string, 0, len(winners))
		for _, name := range clockwise {
			if winners[name] {
				ordered = append(ordered, name)
			}
		}

		share := pot.Amount / len(ordered)
		remainder := pot.Amount % len(ordered)
		for i, name := range ordered {
			payouts[name] += share
			if i < remainder {
				payouts[name]++
			}
		}
	}

	return payouts
}

// potWinners returns the eligible players tied at the best score.
func potWinners(pot SidePot, scores map[string]hands.HandScore) map[string]bool {
	winners := make(map[string]bool)
	var best hands.HandScore
	found := false

	for _, name := range pot.Eligible {
		score, ok := scores[name]
		if !ok {
			continue
		}
		switch {
		case !found:
			best = score
			winners[name] = true
			found = true
		case hands.Compare(score, best) > 0:
			best = score
			winners = map[string]bool{name: true}
		case hands.Compare(score, best) == 0:
			winners[name] = true
		}
	}

	return winners
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
