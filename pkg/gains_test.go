package recal

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestRecalibrate(t *testing.T) {
	for _, tc := range []struct {
		pe, oldGain, newGain float64
		want                 float64
	}{
		{pe: 1, oldGain: 256.658, newGain: 256.658, want: 1},
		{pe: 2, oldGain: 200, newGain: 100, want: 4},
		{pe: 0, oldGain: 200, newGain: 100, want: 0},
	} {
		if got := Recalibrate(tc.pe, tc.oldGain, tc.newGain); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Recalibrate(%v, %v, %v): got=%v, want=%v", tc.pe, tc.oldGain, tc.newGain, got, tc.want)
		}
	}

	// linear in pe
	a := Recalibrate(1.5, 256.658, 240)
	b := Recalibrate(3.0, 256.658, 240)
	if math.Abs(b-2*a) > 1e-12 {
		t.Fatalf("recalibration is not linear: got=%v, want=%v", b, 2*a)
	}
}

func TestLinearGain(t *testing.T) {
	fit := LinearGain{Y: 261.71273, M: -0.01136}
	if got, want := fit.At(0), 261.71273; got != want {
		t.Fatalf("invalid intercept: got=%v, want=%v", got, want)
	}
	if got, want := fit.At(10000), 261.71273-113.6; math.Abs(got-want) > 1e-9 {
		t.Fatalf("invalid gain: got=%v, want=%v", got, want)
	}
}

func TestNewChannelGain(t *testing.T) {
	g := NewChannelGain(3, 1.6, 0.02, 0, 50, 25)
	if got, want := g.Gain, 1.6*1e7*1.602e-19/0.00488e-12; math.Abs(got-want) > 1e-9 {
		t.Fatalf("invalid gain: got=%v, want=%v", got, want)
	}
	if got, want := g.Chi2NDF, 2.0; got != want {
		t.Fatalf("invalid chi2/ndf: got=%v, want=%v", got, want)
	}
	if !g.Valid() {
		t.Fatalf("gain %+v should be valid", g)
	}

	bad := NewChannelGain(3, 1.6, 0.02, 4, 50, 0)
	if got, want := bad.Gain, -1.0; got != want {
		t.Fatalf("invalid gain for failed fit: got=%v, want=%v", got, want)
	}
	if got, want := bad.Chi2NDF, -1.0; got != want {
		t.Fatalf("invalid chi2/ndf without dof: got=%v, want=%v", got, want)
	}
	if bad.Valid() {
		t.Fatalf("gain %+v should be invalid", bad)
	}
}

func uniformGains(nChannels int, gain float64) []ChannelGain {
	gains := make([]ChannelGain, nChannels)
	for ch := range gains {
		gains[ch] = ChannelGain{Channel: ch, Gain: gain}
	}
	return gains
}

func TestGainTableCalibrationRun(t *testing.T) {
	table := NewGainTable()
	for _, run := range []int{9400, 9350, 9390} {
		if !table.Add(run, uniformGains(2, 250)) {
			t.Fatalf("could not add SPE run %d", run)
		}
	}
	if got, want := table.Runs(), []int{9350, 9390, 9400}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid runs: got=%v, want=%v", got, want)
	}

	for _, tc := range []struct {
		run  int
		want int
		err  error
	}{
		{run: 9349, err: ErrNoCalibration},
		{run: 9350, want: 9350},
		{run: 9389, want: 9350},
		{run: 9390, want: 9390},
		{run: 9401, want: 9400},
		{run: 12000, want: 9400},
	} {
		got, err := table.CalibrationRun(tc.run)
		if !errors.Is(err, tc.err) {
			t.Fatalf("run %d: invalid error: got=%v, want=%v", tc.run, err, tc.err)
		}
		if err == nil && got != tc.want {
			t.Fatalf("run %d: invalid SPE run: got=%d, want=%d", tc.run, got, tc.want)
		}
	}
}

func TestGainTableDuplicate(t *testing.T) {
	table := NewGainTable()
	table.Add(9390, uniformGains(2, 250))
	if table.Add(9390, uniformGains(2, 300)) {
		t.Fatalf("duplicate SPE run was stored")
	}
	gains, err := table.ChannelGains(9390, 2)
	if err != nil {
		t.Fatalf("could not retrieve gains: %+v", err)
	}
	if got, want := gains, []float64{250, 250}; !reflect.DeepEqual(got, want) {
		t.Fatalf("first entry should win: got=%v, want=%v", got, want)
	}
	if got, want := table.Len(), 1; got != want {
		t.Fatalf("invalid table size: got=%d, want=%d", got, want)
	}
}

func TestGainTableChannelGains(t *testing.T) {
	table := NewGainTable()
	table.Add(1, []ChannelGain{{Channel: 1, Gain: 240}, {Channel: 0, Gain: 260}})
	table.Add(2, []ChannelGain{{Channel: 0, Gain: 260}})
	table.Add(3, []ChannelGain{{Channel: 0, Gain: 260}, {Channel: 1, Gain: -1, FitStatus: 4}})
	table.Add(4, []ChannelGain{{Channel: 0, Gain: 260}, {Channel: 0, Gain: 250}, {Channel: 1, Gain: 250}})
	table.Add(5, []ChannelGain{{Channel: 0, Gain: 260}, {Channel: 1, Gain: 0}})

	gains, err := table.ChannelGains(1, 2)
	if err != nil {
		t.Fatalf("could not retrieve gains: %+v", err)
	}
	if got, want := gains, []float64{260, 240}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid gains: got=%v, want=%v", got, want)
	}

	for _, run := range []int{2, 3, 4, 5, 6} {
		_, err := table.ChannelGains(run, 2)
		if !errors.Is(err, ErrMissingGain) {
			t.Fatalf("SPE run %d: invalid error: got=%v, want=%v", run, err, ErrMissingGain)
		}
	}
}
