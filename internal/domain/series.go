package domain

// PricePoint is a (unix seconds, value) sample. It is used for both
// prediction-market probability history and stock candles; the unit of Value
// (probability vs. currency) is carried by which series the point belongs to.
type PricePoint struct {
	Timestamp int64   `json:"t"`
	Value     float64 `json:"v"`
}

// AlignedPoint is one entry of an AlignedSeries. MatchedPrice is nil when no
// stock sample fell within the alignment window of the probability sample.
type AlignedPoint struct {
	Timestamp    int64    `json:"timestamp"`
	Probability  float64  `json:"probability"`
	MatchedPrice *float64 `json:"matchedPrice"`
}

// AlignedSeries is a probability series joined against a stock-price series,
// ordered by the probability series' timestamps.
type AlignedSeries []AlignedPoint
