package recal

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// DefaultReferenceGain is the gain, in ADC x tick, used by the
// reconstruction that produced the input PE counts.
const DefaultReferenceGain = 256.658

// Charge conversion from SPE fits: electrons to ADC x tick.
// 1 ADC x tick = 0.00488 pC over 50 ohm with a 2 ns tick; the fits are
// quoted in units of 1e7 electrons.
const (
	electronCharge = 1.602e-19
	adcTickCharge  = 0.00488e-12
	fitChargeScale = 1e7
)

// Recalibrate rescales a PE count measured with oldGain to newGain.
func Recalibrate(pe, oldGain, newGain float64) float64 {
	return pe * (oldGain / newGain)
}

// LinearGain models the gain drift with the run number.
type LinearGain struct {
	Y float64 `json:"y"`
	M float64 `json:"m"`
}

func (l LinearGain) At(run int) float64 {
	return l.Y + l.M*float64(run)
}

// ChargeToADC converts a fitted SPE charge to ADC x tick.
func ChargeToADC(q float64) float64 {
	return q * fitChargeScale * electronCharge / adcTickCharge
}

// ChannelGain is the outcome of the SPE fit of one channel.
// Gain and GainErr are -1 when the fit did not converge.
type ChannelGain struct {
	Channel   int
	Gain      float64
	GainErr   float64
	FitStatus int
	Chi2NDF   float64
}

func (g ChannelGain) Valid() bool {
	return g.FitStatus == 0 && g.Gain > 0
}

// NewChannelGain builds a channel gain from the raw fit outputs.
func NewChannelGain(channel int, q, eq float64, fitStatus int, chi2, ndf float64) ChannelGain {
	gain := ChannelGain{
		Channel:   channel,
		Gain:      ChargeToADC(q),
		GainErr:   ChargeToADC(eq),
		FitStatus: fitStatus,
		Chi2NDF:   -1,
	}
	if fitStatus != 0 {
		gain.Gain = -1
		gain.GainErr = -1
	}
	if ndf > 0 {
		gain.Chi2NDF = chi2 / ndf
	}
	return gain
}

// GainTable maps SPE calibration runs to their per-channel gains.
type GainTable struct {
	runs  []int
	gains map[int][]ChannelGain
}

func NewGainTable() *GainTable {
	return &GainTable{gains: make(map[int][]ChannelGain)}
}

// Add registers the gains of an SPE run. The first entry seen for a run
// wins; Add reports whether the gains were stored.
func (t *GainTable) Add(speRun int, gains []ChannelGain) bool {
	if _, ok := t.gains[speRun]; ok {
		logger.Error(fmt.Sprintf("duplicate SPE run found: %d", speRun))
		return false
	}
	sorted := slices.Clone(gains)
	slices.SortStableFunc(sorted, func(a, b ChannelGain) int {
		return a.Channel - b.Channel
	})
	t.gains[speRun] = sorted
	i, _ := slices.BinarySearch(t.runs, speRun)
	t.runs = slices.Insert(t.runs, i, speRun)
	return true
}

// Runs returns the SPE runs in ascending order.
func (t *GainTable) Runs() []int {
	return slices.Clone(t.runs)
}

func (t *GainTable) Len() int {
	return len(t.runs)
}

// Entries returns the fit results of an SPE run ordered by channel.
func (t *GainTable) Entries(speRun int) []ChannelGain {
	return t.gains[speRun]
}

// CalibrationRun returns the most recent SPE run at or before dataRun.
func (t *GainTable) CalibrationRun(dataRun int) (int, error) {
	i, found := slices.BinarySearch(t.runs, dataRun)
	if found {
		return t.runs[i], nil
	}
	if i == 0 {
		return 0, fmt.Errorf("data run %d: %w", dataRun, ErrNoCalibration)
	}
	return t.runs[i-1], nil
}

// ChannelGains returns the gains of an SPE run indexed by channel. Every
// channel in [0, nChannels) must have exactly one valid fit.
func (t *GainTable) ChannelGains(speRun int, nChannels int) ([]float64, error) {
	entries, ok := t.gains[speRun]
	if !ok {
		return nil, fmt.Errorf("SPE run %d not loaded: %w", speRun, ErrMissingGain)
	}
	gains := make([]float64, nChannels)
	seen := make([]bool, nChannels)
	for _, entry := range entries {
		if entry.Channel < 0 || entry.Channel >= nChannels {
			continue
		}
		if seen[entry.Channel] {
			return nil, fmt.Errorf("SPE run %d channel %d: duplicate entry: %w", speRun, entry.Channel, ErrMissingGain)
		}
		if !entry.Valid() {
			return nil, fmt.Errorf("SPE run %d channel %d: fit status %d gain %g: %w",
				speRun, entry.Channel, entry.FitStatus, entry.Gain, ErrMissingGain)
		}
		gains[entry.Channel] = entry.Gain
		seen[entry.Channel] = true
	}
	for channel, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("SPE run %d channel %d: no entry: %w", speRun, channel, ErrMissingGain)
		}
	}
	return gains, nil
}
