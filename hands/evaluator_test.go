package hands

import (
	"testing"

	"github.com/lazharichir/holdem/cards"
	"github.com/stretchr/testify/require"
)

func TestCardsToComparableInt(t *testing.T) {
	tests := []struct {
		name string
		hand cards.Stack
		want int
	}{
		{"ace ten seven", cards.MustCards("AH", "TD", "7C"), 0xEA7},
		{"order does not matter", cards.MustCards("7C", "AH", "TD"), 0xEA7},
		{"single ace", cards.MustCards("AS"), 0xE},
		{"five kickers", cards.MustCards("AH", "KD", "9C", "7S", "5H"), 0xED975},
		{"empty", cards.Stack{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, cardsToComparableInt(tt.hand))
		})
	}
}

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name          string
		hand          cards.Stack
		wantCategory  Category
		wantPrimary   int
		wantSecondary int
	}{
		{
			"high card",
			cards.MustCards("AH", "KD", "9C", "7S", "5H", "4D", "2C"),
			HighCard, 0, 0xED975,
		},
		{
			"one pair with three kickers",
			cards.MustCards("AH", "AD", "9C", "7S", "5H", "4D", "2C"),
			OnePair, 0xE, 0x975,
		},
		{
			"two pair with one kicker",
			cards.MustCards("AH", "AD", "9C", "9S", "5H", "4D", "2C"),
			TwoPair, 0xE9, 0x5,
		},
		{
			"three pairs keep the best two plus kicker",
			cards.MustCards("AH", "AD", "9C", "9S", "5H", "5D", "KC"),
			TwoPair, 0xE9, 0xD,
		},
		{
			"three of a kind with two kickers",
			cards.MustCards("AH", "AD", "AC", "9S", "5H", "4D", "2C"),
			ThreeOfAKind, 0xE, 0x95,
		},
		{
			"straight",
			cards.MustCards("9H", "8D", "7C", "6S", "5H", "KD", "2C"),
			Straight, 9, 0,
		},
		{
			"wheel scores with high card five",
			cards.MustCards("AH", "2D", "3C", "4S", "5H", "KD", "9C"),
			Straight, 5, 0,
		},
		{
			"flush",
			cards.MustCards("AH", "QH", "9H", "7H", "2H", "KD", "3C"),
			Flush, 0xEC972, 0,
		},
		{
			"full house",
			cards.MustCards("AH", "AD", "AC", "9S", "9H", "4D", "2C"),
			FullHouse, 0xE9, 0,
		},
		{
			"two sets of trips make a full house",
			cards.MustCards("AH", "AD", "AC", "9S", "9H", "9D", "2C"),
			FullHouse, 0xE9, 0,
		},
		{
			"four of a kind with one kicker",
			cards.MustCards("AH", "AD", "AC", "AS", "9H", "4D", "2C"),
			FourOfAKind, 0xE, 0x9,
		},
		{
			"straight flush",
			cards.MustCards("9H", "8H", "7H", "6H", "5H", "KD", "2C"),
			StraightFlush, 9, 0,
		},
		{
			"steel wheel",
			cards.MustCards("AH", "2H", "3H", "4H", "5H", "KD", "9C"),
			StraightFlush, 5, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Evaluate(tt.hand)
			require.NoError(t, err)
			require.Equal(t, tt.wantCategory, score.Category)
			require.Equal(t, tt.wantPrimary, score.Primary)
			require.Equal(t, tt.wantSecondary, score.Secondary)
			require.Len(t, score.BestFive, 5)
		})
	}
}

func TestEvaluateOrderInvariance(t *testing.T) {
	hand := cards.MustCards("AH", "AD", "9C", "9S", "5H", "4D", "2C")
	want, err := Evaluate(hand)
	require.NoError(t, err)

	reversed := make(cards.Stack, len(hand))
	for i, c := range hand {
		reversed[len(hand)-1-i] = c
	}
	got, err := Evaluate(reversed)
	require.NoError(t, err)

	require.Equal(t, 0, Compare(want, got))
}

func TestEvaluateFiveAndSixCards(t *testing.T) {
	five, err := Evaluate(cards.MustCards("AH", "KH", "QH", "JH", "TH"))
	require.NoError(t, err)
	require.Equal(t, StraightFlush, five.Category)
	require.Equal(t, 14, five.Primary)

	six, err := Evaluate(cards.MustCards("AH", "AD", "KC", "QS", "JH", "2D"))
	require.NoError(t, err)
	require.Equal(t, OnePair, six.Category)
}

func TestCompareOrdersCategories(t *testing.T) {
	flush, err := Evaluate(cards.MustCards("AH", "QH", "9H", "7H", "2H", "KD", "3C"))
	require.NoError(t, err)
	straight, err := Evaluate(cards.MustCards("AH", "KD", "QC", "JS", "TH", "4D", "2C"))
	require.NoError(t, err)
	require.Positive(t, Compare(flush, straight), "a flush beats an ace-high straight")

	lowSF, err := Evaluate(cards.MustCards("6H", "5H", "4H", "3H", "2H", "KD", "9C"))
	require.NoError(t, err)
	require.Positive(t, Compare(lowSF, straight), "the lowest straight flush beats the highest straight")

	quads, err := Evaluate(cards.MustCards("9H", "9D", "9C", "9S", "2H", "4D", "3C"))
	require.NoError(t, err)
	fullHouse, err := Evaluate(cards.MustCards("AH", "AD", "AC", "KS", "KH", "4D", "2C"))
	require.NoError(t, err)
	require.Positive(t, Compare(quads, fullHouse), "quads beat aces full")
}

func TestCompareTieIgnoresSuits(t *testing.T) {
	a, err := Evaluate(cards.MustCards("AH", "AD", "KC", "QS", "JH", "4D", "2C"))
	require.NoError(t, err)
	b, err := Evaluate(cards.MustCards("AS", "AC", "KD", "QH", "JD", "3S", "2H"))
	require.NoError(t, err)

	// Only three kickers play alongside the pair, so the differing
	// sixth-best cards cannot break the tie.
	require.Equal(t, 0, Compare(a, b))
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	var invalidErr *InvalidHandError

	_, err := Evaluate(cards.MustCards("AH", "KD", "9C", "7S"))
	require.ErrorAs(t, err, &invalidErr)

	_, err = Evaluate(cards.MustCards("AH", "KD", "9C", "7S", "AH"))
	require.ErrorAs(t, err, &invalidErr)
}
