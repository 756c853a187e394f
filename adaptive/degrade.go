package adaptive

// Degrade computes one degradation step: the budget shrunk by factor,
// truncated toward zero, clamped below by floor. With factor in (0,1) the
// result never exceeds the input, so repeated application is monotonically
// non-increasing and converges to floor.
func Degrade(budget int, factor float64, floor int) int {
	next := int(float64(budget) * factor)
	if next < floor {
		next = floor
	}
	return next
}
