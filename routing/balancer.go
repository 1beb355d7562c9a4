package routing

// Budget is the length plan for the meandered segments of one route.
type Budget struct {
	Active  bool      // false when the route has no meanders
	Extra   float64   // length each meander adds over its straight baseline
	Targets []float64 // per-meander total length, in meander order
}

// Balance spreads the length still missing from total evenly across the meanders:
//
//	extra    = (total - sum(fixed) - sum(baselines)) / M
//	target_i = extra + baselines[i]
//
// fixed holds the lengths of the leads and every non-meander segment, baselines the
// straight-line length of each meander. The split is computed once; a meander that
// later falls short is reported, not compensated by the others.
func Balance(total float64, fixed, baselines []float64) Budget {
	m := len(baselines)
	if m == 0 {
		return Budget{}
	}

	remaining := total
	for _, f := range fixed {
		remaining -= f
	}
	for _, b := range baselines {
		remaining -= b
	}

	extra := remaining / float64(m)
	targets := make([]float64, m)
	for i, b := range baselines {
		targets[i] = extra + b
	}
	return Budget{Active: true, Extra: extra, Targets: targets}
}
