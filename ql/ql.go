package ql

// TDTarget is the one-step temporal-difference target r + γ·max_a' Q(s', a').
func TDTarget(reward, nextMaxQ, discountRate float32) float32 {
	return reward + discountRate*nextMaxQ
}

// TerminalTarget is the target of the last move of an episode, where no
// successor state is left to bootstrap from.
func TerminalTarget(reward, discountRate float32) float32 {
	return discountRate * reward
}
