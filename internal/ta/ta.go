package ta

import "math"

// EMASeries seeds from the first input value instead of a simple-average
// warm-up, so composed EMAs (MACD signal) follow the same recursion.
func EMASeries(values []float64, window int) []float64 {
	if len(values) == 0 || window <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	if window == 1 {
		// alpha = 1: the series reproduces its input.
		copy(out, values)
		return out
	}
	alpha := 2.0 / float64(window+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		// prev + alpha*(v-prev) rather than alpha*v + (1-alpha)*prev:
		// algebraically the same, but free of round-off on constant
		// input, so a flat series reproduces itself exactly.
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

func SMASeries(values []float64, window int) []float64 {
	if len(values) == 0 || window <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i := range values {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RSISeries uses a simple rolling mean of gains and losses, not Wilder
// smoothing; the rule set's thresholds were tuned against this form.
// A zero-loss window yields 100 exactly.
func RSISeries(values []float64, window int) []float64 {
	if len(values) == 0 || window <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < window+1 {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	gainSum, lossSum := 0.0, 0.0
	for i := 1; i < len(values); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > window {
			gainSum -= gains[i-window]
			lossSum -= losses[i-window]
		}
		if i < window {
			continue
		}
		avgLoss := lossSum / float64(window)
		if avgLoss == 0 {
			out[i] = 100.0
			continue
		}
		avgGain := gainSum / float64(window)
		rs := avgGain / avgLoss
		out[i] = 100.0 - (100.0 / (1.0 + rs))
	}
	return out
}

// ATRSeries computes the true range per bar (high-low on the first bar,
// where no previous close exists) and smooths it with the same EMA recursion.
func ATRSeries(highs, lows, closes []float64, window int) []float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) || len(closes) == 0 || window <= 0 {
		return nil
	}
	tr := make([]float64, len(closes))
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return EMASeries(tr, window)
}

// Keltner returns the channel basis and bands: basis = EMA(close, basisWin),
// upper/lower = basis +/- mult * ATR(atrWin).
func Keltner(closes, highs, lows []float64, basisWin, atrWin int, mult float64) (basis, upper, lower []float64) {
	basis = EMASeries(closes, basisWin)
	atr := ATRSeries(highs, lows, closes, atrWin)
	if basis == nil || atr == nil {
		return nil, nil, nil
	}
	upper = make([]float64, len(basis))
	lower = make([]float64, len(basis))
	for i := range basis {
		upper[i] = basis[i] + mult*atr[i]
		lower[i] = basis[i] - mult*atr[i]
	}
	return basis, upper, lower
}

// MACDSeries returns the MACD line, its signal line and the histogram.
// The histogram is line minus signal at every position by construction.
func MACDSeries(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	if emaFast == nil || emaSlow == nil {
		return nil, nil, nil
	}
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMASeries(line, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

func Prev(series []float64) float64 {
	if len(series) < 2 {
		return math.NaN()
	}
	return series[len(series)-2]
}
