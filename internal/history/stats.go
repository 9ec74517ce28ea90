package history

import "github.com/shopspring/decimal"

// Stats is a min/max/avg summary of a series of values.
type Stats struct {
	Min float64
	Max float64
	Avg float64 // rounded to one decimal
}

// CalculateStats summarises values. An empty series yields all zeros.
func CalculateStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	s := Stats{Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Avg = decimal.NewFromFloat(sum / float64(len(values))).Round(1).InexactFloat64()
	return s
}
