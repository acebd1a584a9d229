package stocks

// apiCandles is the candle endpoint response: parallel arrays of close
// prices and unix-second timestamps, plus a status flag ("ok" or "no_data").
type apiCandles struct {
	Close      []float64 `json:"c"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}
