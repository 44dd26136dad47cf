package prediction

// Band is the qualitative yield level attached to a prediction.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Label is the wire form of the band.
func (b Band) Label() string {
	switch b {
	case BandLow:
		return "bajo"
	case BandMedium:
		return "medio"
	case BandHigh:
		return "alto"
	default:
		return ""
	}
}

// Threshold assigns Band to predictions inside Range.
type Threshold struct {
	Band  Band
	Range Range
}

// Thresholds is evaluated in order; the first containing range wins.
type Thresholds []Threshold

// Classify returns the band for v, or false when v falls in a gap.
func (t Thresholds) Classify(v float64) (Band, bool) {
	for _, th := range t {
		if th.Range.Contains(v) {
			return th.Band, true
		}
	}
	return "", false
}

// Total reports whether every finite prediction gets a band.
func (t Thresholds) Total() bool {
	ranges := make([]Range, len(t))
	for i, th := range t {
		ranges[i] = th.Range
	}
	return contiguous(ranges)
}

var (
	cacaoThresholds = Thresholds{
		{Band: BandLow, Range: Below(0.3)},
		{Band: BandMedium, Range: From(0.3, 0.7)},
		{Band: BandHigh, Range: AtLeast(0.7)},
	}

	// Predictions in [203, 204) have no band.
	cafeThresholds = Thresholds{
		{Band: BandLow, Range: Below(203)},
		{Band: BandMedium, Range: Between(204, 589)},
		{Band: BandHigh, Range: Above(589)},
	}

	maizThresholds = Thresholds{
		{Band: BandLow, Range: Below(451)},
		{Band: BandMedium, Range: Between(451, 1500)},
		{Band: BandHigh, Range: Above(1500)},
	}
)
