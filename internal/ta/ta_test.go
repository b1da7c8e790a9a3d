package ta

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMAConstantSeriesIsExact(t *testing.T) {
	in := make([]float64, 300)
	for i := range in {
		in[i] = 100
	}
	// The recursion must not accumulate round-off on flat input: every
	// output is the constant bit-for-bit, not just within tolerance.
	for _, w := range []int{1, 9, 35, 200} {
		out := EMASeries(in, w)
		for i, v := range out {
			if v != 100 {
				t.Fatalf("window %d: out[%d] = %.17g, want exactly 100", w, i, v)
			}
		}
	}
}

func TestEMASeedsFromFirstValue(t *testing.T) {
	in := []float64{42.5, 43.0, 41.0}
	out := EMASeries(in, 10)
	if out[0] != in[0] {
		t.Errorf("Expected EMA to seed from first value %.2f, got %.2f", in[0], out[0])
	}
}

func TestEMAWindowOneIsIdentity(t *testing.T) {
	in := []float64{5, 9, 2, 7, 7, 1}
	out := EMASeries(in, 1)
	for i := range in {
		if !almostEqual(out[i], in[i]) {
			t.Errorf("EMA(1) at %d: expected %.4f, got %.4f", i, in[i], out[i])
		}
	}
}

func TestEMAKnownValues(t *testing.T) {
	// window 3 => alpha 0.5
	in := []float64{1, 2, 3}
	want := []float64{1, 1.5, 2.25}
	out := EMASeries(in, 3)
	for i := range want {
		if !almostEqual(out[i], want[i]) {
			t.Errorf("EMA(3) at %d: expected %.4f, got %.4f", i, want[i], out[i])
		}
	}
}

func TestEMAEmptyAndInvalidWindow(t *testing.T) {
	if out := EMASeries(nil, 5); out != nil {
		t.Errorf("Expected nil for empty input, got %v", out)
	}
	if out := EMASeries([]float64{1, 2}, 0); out != nil {
		t.Errorf("Expected nil for zero window, got %v", out)
	}
}

func TestSMASeriesKnownValues(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	out := SMASeries(in, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("Expected NaN before the window fills")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(out[i+2], w) {
			t.Errorf("SMA(3) at %d: expected %.4f, got %.4f", i+2, w, out[i+2])
		}
	}
}

func TestRSIConstantSeriesHitsZeroLossCase(t *testing.T) {
	in := make([]float64, 50)
	for i := range in {
		in[i] = 100.0
	}
	out := RSISeries(in, 14)
	for i := 14; i < len(out); i++ {
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			t.Fatalf("RSI at %d is non-finite for constant input: %v", i, out[i])
		}
		if out[i] != 100.0 {
			t.Errorf("RSI at %d: expected zero-loss special case 100, got %.4f", i, out[i])
		}
	}
}

func TestRSIWarmupUndefined(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	out := RSISeries(in, 5)
	for i := 0; i < 5; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("RSI at %d: expected NaN during warm-up, got %.4f", i, out[i])
		}
	}
	if math.IsNaN(out[5]) {
		t.Error("RSI at first post-warm-up index should be defined")
	}
}

func TestRSIAllLossesIsZero(t *testing.T) {
	in := []float64{100, 99, 98, 97, 96, 95, 94}
	out := RSISeries(in, 5)
	last := out[len(out)-1]
	if !almostEqual(last, 0) {
		t.Errorf("Expected RSI 0 for all-loss window, got %.4f", last)
	}
}

func TestRSIBounded(t *testing.T) {
	in := []float64{10, 12, 11, 13, 12.5, 14, 13, 15, 14.5, 16, 15, 17, 16, 18, 17.5, 19}
	out := RSISeries(in, 14)
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("RSI at %d out of bounds: %.4f", i, v)
		}
	}
}

func TestRSIRollingWindowDropsOldDeltas(t *testing.T) {
	// One loss followed by enough gains that the loss leaves the window.
	in := []float64{100, 90, 91, 92, 93, 94, 95, 96}
	out := RSISeries(in, 3)
	last := out[len(out)-1]
	if last != 100.0 {
		t.Errorf("Expected RSI 100 once the loss left the rolling window, got %.4f", last)
	}
}

func TestATRFirstBarUsesHighLow(t *testing.T) {
	highs := []float64{12, 13}
	lows := []float64{10, 11}
	closes := []float64{11, 12}
	out := ATRSeries(highs, lows, closes, 1)
	// window 1 EMA is identity over the TR series
	if !almostEqual(out[0], 2) {
		t.Errorf("Expected first TR high-low=2, got %.4f", out[0])
	}
	// bar 1: max(13-11, |13-11|, |11-11|) = 2
	if !almostEqual(out[1], 2) {
		t.Errorf("Expected TR 2 at bar 1, got %.4f", out[1])
	}
}

func TestATRGapUp(t *testing.T) {
	// Gap above the prior close: |high-prevClose| dominates high-low.
	highs := []float64{10, 20}
	lows := []float64{9, 19}
	closes := []float64{9.5, 19.5}
	out := ATRSeries(highs, lows, closes, 1)
	if !almostEqual(out[1], 10.5) {
		t.Errorf("Expected TR |20-9.5|=10.5, got %.4f", out[1])
	}
}

func TestATRMismatchedLengths(t *testing.T) {
	if out := ATRSeries([]float64{1, 2}, []float64{1}, []float64{1, 2}, 5); out != nil {
		t.Errorf("Expected nil for mismatched inputs, got %v", out)
	}
}

func TestKeltnerBandsSymmetricAroundBasis(t *testing.T) {
	closes := []float64{100, 101, 102, 101, 100, 99, 100, 101}
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c + 1
		lows[i] = c - 1
	}
	basis, upper, lower := Keltner(closes, highs, lows, 4, 3, 2.0)
	atr := ATRSeries(highs, lows, closes, 3)
	for i := range basis {
		if !almostEqual(upper[i]-basis[i], 2.0*atr[i]) {
			t.Errorf("Upper band offset at %d: expected %.4f, got %.4f", i, 2.0*atr[i], upper[i]-basis[i])
		}
		if !almostEqual(basis[i]-lower[i], 2.0*atr[i]) {
			t.Errorf("Lower band offset at %d: expected %.4f, got %.4f", i, 2.0*atr[i], basis[i]-lower[i])
		}
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 14, 12, 15, 16, 14, 17, 18, 16, 19, 20}
	line, sig, hist := MACDSeries(closes, 3, 6, 2)
	if len(line) != len(closes) || len(sig) != len(closes) || len(hist) != len(closes) {
		t.Fatal("MACD series length mismatch")
	}
	for i := range closes {
		if !almostEqual(hist[i], line[i]-sig[i]) {
			t.Errorf("Histogram at %d: expected %.6f, got %.6f", i, line[i]-sig[i], hist[i])
		}
	}
}

func TestMACDSignalComposesEMARecursion(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 15, 14, 16}
	line, sig, _ := MACDSeries(closes, 2, 4, 3)
	want := EMASeries(line, 3)
	for i := range sig {
		if !almostEqual(sig[i], want[i]) {
			t.Errorf("Signal at %d: expected %.6f, got %.6f", i, want[i], sig[i])
		}
	}
}

func TestLastAndPrev(t *testing.T) {
	s := []float64{1, 2, 3}
	if Last(s) != 3 {
		t.Errorf("Expected Last 3, got %.2f", Last(s))
	}
	if Prev(s) != 2 {
		t.Errorf("Expected Prev 2, got %.2f", Prev(s))
	}
	if !math.IsNaN(Last(nil)) || !math.IsNaN(Prev([]float64{1})) {
		t.Error("Expected NaN for short series")
	}
}
