package extract

// Locator is one strategy for finding a value in a snapshot. Locate reports
// false when the strategy does not apply to the page.
type Locator[T any] struct {
	ID     string
	Locate func(*Snapshot) (T, bool)
}

// First tries chain in order and returns the first located value together
// with the ID of the locator that produced it.
func First[T any](s *Snapshot, chain []Locator[T]) (T, string, bool) {
	for _, l := range chain {
		if v, ok := l.Locate(s); ok {
			return v, l.ID, true
		}
	}
	var zero T
	return zero, "", false
}
