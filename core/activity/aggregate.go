package activity

// Recalculate returns the globalPercentage of container c: the sum of the contributions
// of the given snapshot, iterated in listed order. Records owned by another container are ignored.
// The result is not clamped to 100.
func Recalculate(c Container, records []Activity) float64 {
	var total float64
	for _, r := range records {
		if r.Container() != c {
			continue
		}
		total += r.Contribution()
	}
	return total
}
