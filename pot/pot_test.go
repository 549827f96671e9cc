package pot

import (
	"testing"

	"github.com/lazharichir/holdem/cards"
	"github.com/lazharichir/holdem/hands"
	"github.com/stretchr/testify/require"
)

func sumSidePots(pots []SidePot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

func TestSidePotsSingle(t *testing.T) {
	p := New()
	p.Commit("alice", 50)
	p.Commit("bob", 50)
	p.Commit("carol", 50)

	pots := p.SidePots()
	require.Len(t, pots, 1)
	require.Equal(t, 150, pots[0].Amount)
	require.Equal(t, []string{"alice", "bob", "carol"}, pots[0].Eligible)
}

func TestSidePotsAllInBoundary(t *testing.T) {
	p := New()
	p.Commit("alice", 50)
	p.MarkAllIn("alice")
	p.Commit("bob", 100)
	p.MarkAllIn("bob")
	p.Commit("carol", 100)

	pots := p.SidePots()
	require.Len(t, pots, 2)

	require.Equal(t, 150, pots[0].Amount)
	require.Equal(t, []string{"alice", "bob", "carol"}, pots[0].Eligible)

	require.Equal(t, 100, pots[1].Amount)
	require.Equal(t, []string{"bob", "carol"}, pots[1].Eligible)

	require.Equal(t, p.Total(), sumSidePots(pots))
}

func TestSidePotsFoldedMoneyStaysIn(t *testing.T) {
	p := New()
	p.Commit("alice", 30)
	p.Fold("alice")
	p.Commit("bob", 100)
	p.Commit("carol", 100)

	pots := p.SidePots()
	require.Len(t, pots, 1)
	require.Equal(t, 230, pots[0].Amount)
	require.Equal(t, []string{"bob", "carol"}, pots[0].Eligible)
}

func TestSidePotsInvariantAtEveryStep(t *testing.T) {
	p := New()
	steps := []func(){
		func() { p.Commit("alice", 5) },
		func() { p.Commit("bob", 10) },
		func() { p.Commit("alice", 20); p.MarkAllIn("alice") },
		func() { p.Commit("bob", 40) },
		func() { p.Commit("carol", 50) },
		func() { p.Fold("carol") },
		func() { p.Commit("bob", 25); p.MarkAllIn("bob") },
	}

	for i, step := range steps {
		step()
		require.Equal(t, p.Total(), sumSidePots(p.SidePots()), "invariant broken after step %d", i)
	}
}

func TestSidePotsEmpty(t *testing.T) {
	require.Nil(t, New().SidePots())
}

func TestAwardSplitsWithOddChip(t *testing.T) {
	p := New()
	p.Commit("bob", 50)
	p.Commit("carol", 50)
	p.Commit("dave", 1)
	p.Fold("dave")

	scores := map[string]hands.HandScore{
		"bob":   {Category: hands.Straight, Primary: 14},
		"carol": {Category: hands.Straight, Primary: 14},
	}

	// bob sits immediately clockwise of the button, so the odd chip is his.
	payouts := Award(p.SidePots(), scores, []string{"bob", "carol"})
	require.Equal(t, 51, payouts["bob"])
	require.Equal(t, 50, payouts["carol"])
}

func TestAwardSidePots(t *testing.T) {
	p := New()
	p.Commit("alice", 50)
	p.MarkAllIn("alice")
	p.Commit("bob", 100)
	p.MarkAllIn("bob")
	p.Commit("carol", 100)

	// alice holds the best hand but is only eligible for the main pot.
	scores := map[string]hands.HandScore{
		"alice": {Category: hands.FourOfAKind, Primary: 14},
		"bob":   {Category: hands.Flush, Primary: 0xEC972},
		"carol": {Category: hands.OnePair, Primary: 9},
	}

	payouts := Award(p.SidePots(), scores, []string{"alice", "bob", "carol"})
	require.Equal(t, 150, payouts["alice"])
	require.Equal(t, 100, payouts["bob"])
	require.Zero(t, payouts["carol"])

	total := 0
	for _, amount := range payouts {
		total += amount
	}
	require.Equal(t, p.Total(), total)
}

func TestAwardUsesEvaluatedScores(t *testing.T) {
	p := New()
	p.Commit("alice", 20)
	p.Commit("bob", 20)

	aliceScore, err := hands.Evaluate(cards.MustCards("AH", "AD", "KC", "QS", "JH", "4D", "2C"))
	require.NoError(t, err)
	bobScore, err := hands.Evaluate(cards.MustCards("KH", "KD", "AC", "QH", "JD", "4S", "2H"))
	require.NoError(t, err)

	payouts := Award(p.SidePots(), map[string]hands.HandScore{
		"alice": aliceScore,
		"bob":   bobScore,
	}, []string{"alice", "bob"})

	require.Equal(t, 40, payouts["alice"])
	require.Zero(t, payouts["bob"])
}
