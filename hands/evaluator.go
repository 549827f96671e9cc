package hands

import (
	"fmt"
	"sort"

	"github.com/lazharichir/holdem/cards"
)

// Category represents the strength class of a poker hand
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the display name of a category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "high card"
	case OnePair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	}
	return "unknown"
}

// HandScore is the canonical, totally-ordered evaluation of a hand.
// Two scores compare lexicographically by (Category, Primary, Secondary).
// BestFive holds the five cards the score was built from, for display
// and audit only; it never participates in comparison.
type HandScore struct {
	Category  Category
	Primary   int
	Secondary int
	BestFive  cards.Stack
}

func (s HandScore) String() string {
	return fmt.Sprintf("%s (%v)", s.Category, s.BestFive.Shorthands())
}

// InvalidHandError reports a contract violation by the caller: fewer than
// five cards, or a duplicate card. It indicates an upstream dealing bug.
type InvalidHandError struct {
	Reason string
}

func (e *InvalidHandError) Error() string {
	return "invalid hand: " + e.Reason
}

// Compare returns -1, 0 or 1 as a sorts before, equal to, or after b.
// A result of 0 is a true tie and splits the pot.
func Compare(a, b HandScore) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	if a.Primary != b.Primary {
		if a.Primary < b.Primary {
			return -1
		}
		return 1
	}
	if a.Secondary != b.Secondary {
		if a.Secondary < b.Secondary {
			return -1
		}
		return 1
	}
	return 0
}

// Evaluate reduces a set of 5 to 7 unique cards to its best HandScore.
// It is pure and invariant to input order.
func Evaluate(stack cards.Stack) (HandScore, error) {
	if len(stack) < 5 {
		return HandScore{}, &InvalidHandError{Reason: fmt.Sprintf("need at least 5 cards, got %d", len(stack))}
	}

	seen := make(map[cards.Card]bool, len(stack))
	for _, c := range stack {
		if seen[c] {
			return HandScore{}, &InvalidHandError{Reason: "duplicate card " + c.Shorthand()}
		}
		seen[c] = true
	}

	// The three scorers are independent; the best score wins. A straight
	// flush found by the straight scorer outranks the plain flush found
	// by the suit scorer, so taking the max is enough.
	best := rankGroupScore(stack)

	if flush, ok := suitGroupScore(stack); ok && Compare(flush, best) > 0 {
		best = flush
	}

	if straight, ok := straightScore(stack); ok && Compare(straight, best) > 0 {
		best = straight
	}

	return best, nil
}

// packRanks packs ranks into a single comparable integer: sorted
// descending, each rank occupies a 4-bit nibble with the most important
// rank in the most significant position. Exact integer comparison of
// kicker sets, no floating point.
func packRanks(ranks []int) int {
	sorted := append([]int(nil), ranks...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	packed := 0
	for _, r := range sorted {
		packed = packed<<4 | r
	}
	return packed
}

// cardsToComparableInt packs the ranks of the given cards, e.g.
// AH TD 7C -> 0xEA7.
func cardsToComparableInt(stack cards.Stack) int {
	ranks := make([]int, len(stack))
	for i, c := range stack {
		ranks[i] = int(c.Rank)
	}
	return packRanks(ranks)
}

type rankGroup struct {
	rank  cards.Rank
	cards cards.Stack
}

// rankGroupScore classifies the hand by its rank-group signature:
// (4) quads, (3,2) full house, (3) trips, (2,2) two pair, (2) pair,
// otherwise high card.
func rankGroupScore(stack cards.Stack) HandScore {
	byRank := make(map[cards.Rank]cards.Stack)
	for _, c := range stack {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}

	groups := make([]rankGroup, 0, len(byRank))
	for rank, cs := range byRank {
		groups = append(groups, rankGroup{rank: rank, cards: cs})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].cards) != len(groups[j].cards) {
			return len(groups[i].cards) > len(groups[j].cards)
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case len(groups[0].cards) == 4:
		return scoreFromGroups(FourOfAKind, groups[:1], groups[1:], 1)

	case len(groups[0].cards) == 3 && len(groups[1].cards) >= 2:
		// Second group may itself be trips; only two of its cards play.
		trips := groups[0]
		pair := rankGroup{rank: groups[1].rank, cards: groups[1].cards[:2]}
		best := append(append(cards.Stack{}, trips.cards...), pair.cards...)
		return HandScore{
			Category: FullHouse,
			Primary:  packRanks([]int{int(trips.rank), int(pair.rank)}),
			BestFive: best,
		}

	case len(groups[0].cards) == 3:
		return scoreFromGroups(ThreeOfAKind, groups[:1], groups[1:], 2)

	case len(groups[0].cards) == 2 && len(groups[1].cards) == 2:
		return scoreFromGroups(TwoPair, groups[:2], groups[2:], 1)

	case len(groups[0].cards) == 2:
		return scoreFromGroups(OnePair, groups[:1], groups[1:], 3)

	default:
		kickers := topCards(flatten(groups), 5)
		return HandScore{
			Category:  HighCard,
			Secondary: cardsToComparableInt(kickers),
			BestFive:  kickers,
		}
	}
}

// scoreFromGroups builds a score whose Primary encodes the deciding
// groups' ranks and whose Secondary encodes the best kickerCount
// kickers drawn from the rest of the hand.
func scoreFromGroups(category Category, deciding []rankGroup, rest []rankGroup, kickerCount int) HandScore {
	primaryRanks := make([]int, len(deciding))
	best := cards.Stack{}
	for i, g := range deciding {
		primaryRanks[i] = int(g.rank)
		best = append(best, g.cards...)
	}

	kickers := topCards(flatten(rest), kickerCount)
	best = append(best, kickers...)

	return HandScore{
		Category:  category,
		Primary:   packRanks(primaryRanks),
		Secondary: cardsToComparableInt(kickers),
		BestFive:  best,
	}
}

func flatten(groups []rankGroup) cards.Stack {
	var out cards.Stack
	for _, g := range groups {
		out = append(out, g.cards...)
	}
	return out
}

// topCards returns the n highest-ranked cards, descending.
func topCards(stack cards.Stack, n int) cards.Stack {
	sorted := append(cards.Stack{}, stack...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// suitGroupScore detects a flush: any suit holding five or more cards.
// At most one suit can qualify in a seven-card hand.
func suitGroupScore(stack cards.Stack) (HandScore, bool) {
	bySuit := make(map[cards.Suit]cards.Stack)
	for _, c := range stack {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}

	for _, suited := range bySuit {
		if len(suited) < 5 {
			continue
		}
		best := topCards(suited, 5)
		return HandScore{
			Category: Flush,
			Primary:  cardsToComparableInt(best),
			BestFive: best,
		}, true
	}

	return HandScore{}, false
}

// straightScore slides a five-rank window over the distinct ranks,
// with every ace also registered as a low ace. A window whose five
// ranks all exist in a single suit is a straight flush. The wheel
// (A-2-3-4-5) scores with high card five.
func straightScore(stack cards.Stack) (HandScore, bool) {
	byRank := make(map[cards.Rank]cards.Stack)
	for _, c := range stack {
		byRank[c.Rank] = append(byRank[c.Rank], c)
		if c.Rank == cards.Ace {
			byRank[cards.LowAce] = append(byRank[cards.LowAce], c)
		}
	}

	distinct := make([]cards.Rank, 0, len(byRank))
	for rank := range byRank {
		distinct = append(distinct, rank)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] > distinct[j] })

	var best HandScore
	found := false

	for i := 0; i+5 <= len(distinct); i++ {
		window := distinct[i : i+5]
		if window[0]-window[4] != 4 {
			continue
		}

		score := HandScore{Category: Straight, Primary: int(window[0])}
		if suit, ok := windowFlushSuit(byRank, window); ok {
			score.Category = StraightFlush
			score.BestFive = pickWindowCards(byRank, window, suit)
		} else {
			score.BestFive = pickWindowCards(byRank, window, "")
		}

		if !found || Compare(score, best) > 0 {
			best = score
			found = true
		}
	}

	return best, found
}

// windowFlushSuit reports the suit, if any, in which every rank of the
// window is present.
func windowFlushSuit(byRank map[cards.Rank]cards.Stack, window []cards.Rank) (cards.Suit, bool) {
suits:
	for _, suit := range []cards.Suit{cards.Spades, cards.Hearts, cards.Diamonds, cards.Clubs} {
		for _, rank := range window {
			if !hasSuit(byRank[rank], suit) {
				continue suits
			}
		}
		return suit, true
	}
	return "", false
}

func hasSuit(stack cards.Stack, suit cards.Suit) bool {
	for _, c := range stack {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// pickWindowCards selects one card per rank of the window, preferring
// the given suit when set.
func pickWindowCards(byRank map[cards.Rank]cards.Stack, window []cards.Rank, suit cards.Suit) cards.Stack {
	best := make(cards.Stack, 0, 5)
	for _, rank := range window {
		candidates := byRank[rank]
		picked := candidates[0]
		if suit != "" {
			for _, c := range candidates {
				if c.Suit == suit {
					picked = c
					break
				}
			}
		}
		best = append(best, picked)
	}
	return best
}
