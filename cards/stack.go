package cards

// Stack represents multiple cards
type Stack []Card

// NewStack creates a new stack from the given cards
func NewStack(cards ...Card) Stack {
	return cards
}

// Contains reports whether the stack holds the given card.
func (s Stack) Contains(card Card) bool {
	for _, c := range s {
		if c.Equals(card) {
			return true
		}
	}
	return false
}

// Shorthands returns the two-character form of every card in order.
func (s Stack) Shorthands() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Shorthand()
	}
	return out
}
