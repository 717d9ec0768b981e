package domain

// ReturnsInput is a tagged returns dataset. The caller decides whether real
// return data exists; the metrics engine never sniffs schemas to guess.
type ReturnsInput struct {
	records []ReturnRecord
	real    bool
}

// RealReturns wraps an actual returns dataset.
func RealReturns(records []ReturnRecord) ReturnsInput {
	return ReturnsInput{records: records, real: true}
}

// NoReturns marks the returns dataset as absent; return metrics fall back
// to category-based simulation.
func NoReturns() ReturnsInput {
	return ReturnsInput{}
}

// Real reports whether an actual returns dataset is present, and returns it.
// An empty real dataset is still "real": zero observed returns.
func (r ReturnsInput) Real() ([]ReturnRecord, bool) {
	if !r.real {
		return nil, false
	}
	return r.records, true
}
