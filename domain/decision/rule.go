package decision

import "github.com/soocke/poker-pixel-bot/domain/card"

// highRanks are the hand ranks worth playing.
var highRanks = map[card.Rank]bool{
	'A': true, 'T': true, 'J': true, 'Q': true, 'K': true, '9': true,
}

// Decide applies the betting heuristic: call when both hand ranks are high
// and either a hand rank pairs a flop rank or some flop slot is still
// unresolved; fold otherwise. Placeholder hand codes are never high.
func Decide(hand [2]card.Code, flop [3]card.Code) Action {
	for _, h := range hand {
		if h.IsPlaceholder() || !highRanks[h.Rank()] {
			return ActionFold
		}
	}
	for _, f := range flop {
		if f.IsPlaceholder() {
			return ActionCall
		}
		for _, h := range hand {
			if h.Rank() == f.Rank() {
				return ActionCall
			}
		}
	}
	return ActionFold
}
