package extract

import "fmt"

// YearRange is an inclusive range of years.
type YearRange struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// Validate rejects empty and reversed ranges.
func (r YearRange) Validate() error {
	if r.From <= 0 || r.To <= 0 {
		return fmt.Errorf("year range %d..%d: years must be positive", r.From, r.To)
	}
	if r.From > r.To {
		return fmt.Errorf("year range %d..%d: from is after to", r.From, r.To)
	}
	return nil
}

// Years lists the years in ascending order. A reversed range is empty.
func (r YearRange) Years() []int {
	if r.From > r.To {
		return nil
	}
	out := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		out = append(out, y)
	}
	return out
}

// Split cuts the range into consecutive chunks of at most size years.
func (r YearRange) Split(size int) []YearRange {
	if size <= 0 || r.From > r.To {
		return nil
	}
	var out []YearRange
	for from := r.From; from <= r.To; from += size {
		out = append(out, YearRange{From: from, To: min(from+size-1, r.To)})
	}
	return out
}

func (r YearRange) String() string { return fmt.Sprintf("%d..%d", r.From, r.To) }
