package recal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// DefaultThreshold is the smallest PE value that enters a histogram.
const DefaultThreshold = 1e-9

// Settings are the numeric parameters of the recalibration job.
type Settings struct {
	NChannels     int
	PEMin         float64
	PEMax         float64
	TimeCut       float64
	Threshold     float64
	ReferenceGain float64
	Fit           LinearGain
	NumWorkers    int
	Verbosity     int
}

type RunStatus int

const (
	RunCalibrated RunStatus = iota
	RunUncalibrated
	RunFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunCalibrated:
		return "calibrated"
	case RunUncalibrated:
		return "uncalibrated"
	case RunFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunSummary counts what happened to the data of a run.
type RunSummary struct {
	Run            int
	SPERun         int
	Status         RunStatus
	Batches        int
	SkippedBatches int
	Hits           int64
	Selected       int64
	Isolated       int64
	Events         int64
}

// HitReader yields batches until it returns io.EOF. A reader returning
// another error must have moved past the failing input.
type HitReader interface {
	Next() (Batch, error)
}

type runState struct {
	run    int
	speRun int
	status RunStatus
	gains  []float64
}

type job struct {
	batch Batch
	state *runState
}

type recalHit struct {
	channel int
	raw     float64
	recal   float64
	fit     float64
}

type eventSums struct {
	raw   float64
	recal float64
	fit   float64
}

type batchResult struct {
	source   string
	chunk    int
	run      int
	state    *runState
	err      error
	hits     int
	selected int
	events   int
	isolated []recalHit
	sums     []eventSums
}

// Processor filters, recalibrates and histograms batches of hits.
type Processor struct {
	settings  Settings
	filter    IsolationFilter
	table     *GainTable
	hists     *Histograms
	states    map[int]*runState
	summaries map[int]*RunSummary
	nBatches  int
}

// NewProcessor books the histograms of runs. table may be nil, in which
// case every run is uncalibrated.
func NewProcessor(settings Settings, table *GainTable, runs []int, hists *Histograms) *Processor {
	if table == nil {
		table = NewGainTable()
	}
	p := &Processor{
		settings:  settings,
		filter:    IsolationFilter{TimeCut: settings.TimeCut},
		table:     table,
		hists:     hists,
		states:    make(map[int]*runState),
		summaries: make(map[int]*RunSummary),
	}
	for _, run := range runs {
		p.summaries[run] = &RunSummary{Run: run, SPERun: -1}
	}
	return p
}

func (p *Processor) Histograms() *Histograms {
	return p.hists
}

// Summaries returns one summary per run in ascending run order.
func (p *Processor) Summaries() []RunSummary {
	summaries := make([]RunSummary, 0, len(p.summaries))
	for _, s := range p.summaries {
		summaries = append(summaries, *s)
	}
	slices.SortFunc(summaries, func(a, b RunSummary) int {
		return a.Run - b.Run
	})
	return summaries
}

func (p *Processor) resolveRun(run int) *runState {
	if state, ok := p.states[run]; ok {
		return state
	}
	state := &runState{run: run, speRun: -1}
	speRun, err := p.table.CalibrationRun(run)
	switch {
	case err != nil:
		logger.Error(fmt.Sprintf("no valid SPE run found for cal run %d, recalibrated histograms will stay empty", run))
		state.status = RunUncalibrated
	default:
		state.speRun = speRun
		gains, err := p.table.ChannelGains(speRun, p.settings.NChannels)
		if err != nil {
			logger.Error(fmt.Errorf("run %d skipped: %w", run, err).Error())
			state.status = RunFailed
			break
		}
		state.gains = gains
		state.status = RunCalibrated
		if p.settings.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Run %d calibrated with SPE run %d", run, speRun), "processor")
		}
	}
	p.states[run] = state
	return state
}

func (p *Processor) nextJob(reader HitReader) (job, error) {
	for {
		batch, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return job{}, io.EOF
		}
		if err != nil {
			logger.Error(fmt.Errorf("error reading batch: %w", err).Error())
			continue
		}
		return job{batch: batch, state: p.resolveRun(batch.ExpectedRun)}, nil
	}
}

func (p *Processor) checkBatch(b Batch) error {
	for _, hit := range b.Hits {
		if hit.Run != b.ExpectedRun {
			return fmt.Errorf("%s chunk %d: hit from run %d, expected run %d: %w",
				b.Source, b.Chunk, hit.Run, b.ExpectedRun, ErrRunMismatch)
		}
		if hit.Channel < 0 || hit.Channel >= p.settings.NChannels {
			return fmt.Errorf("%s chunk %d: channel %d: %w", b.Source, b.Chunk, hit.Channel, ErrBadChannel)
		}
	}
	return nil
}

// process applies the selection, grouping, isolation and recalibration to
// a batch. It only reads shared state and may run concurrently.
func (p *Processor) process(j job) batchResult {
	b := j.batch
	res := batchResult{
		source: b.Source,
		chunk:  b.Chunk,
		run:    b.ExpectedRun,
		state:  j.state,
		hits:   len(b.Hits),
	}
	if j.state.status == RunFailed {
		res.err = fmt.Errorf("%s chunk %d: run %d: %w", b.Source, b.Chunk, b.ExpectedRun, ErrRunFailed)
		return res
	}
	if err := p.checkBatch(b); err != nil {
		res.err = err
		return res
	}

	selected := SelectPE(b.Hits, p.settings.PEMin, p.settings.PEMax)
	res.selected = len(selected)

	groups := GroupByEvent(selected)
	res.events = len(groups)
	res.sums = make([]eventSums, 0, len(groups))

	refGain := p.settings.ReferenceGain
	fitGain := p.settings.Fit.At(b.ExpectedRun)
	calibrated := j.state.status == RunCalibrated
	for _, group := range groups {
		kept := p.filter.Apply(group)
		var sums eventSums
		for _, hit := range kept.Hits {
			rh := recalHit{
				channel: hit.Channel,
				raw:     hit.PE,
				fit:     Recalibrate(hit.PE, refGain, fitGain),
			}
			if calibrated {
				rh.recal = Recalibrate(hit.PE, refGain, j.state.gains[hit.Channel])
			}
			sums.raw += rh.raw
			sums.recal += rh.recal
			sums.fit += rh.fit
			res.isolated = append(res.isolated, rh)
		}
		res.sums = append(res.sums, sums)
	}
	return res
}

func (p *Processor) safeProcess(j job) (res batchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = batchResult{
				source: j.batch.Source,
				chunk:  j.batch.Chunk,
				run:    j.batch.ExpectedRun,
				state:  j.state,
				hits:   len(j.batch.Hits),
				err:    fmt.Errorf("recovered from panic on %s chunk %d: %v", j.batch.Source, j.batch.Chunk, r),
			}
		}
	}()
	return p.process(j)
}

func (p *Processor) summary(run int) *RunSummary {
	s, ok := p.summaries[run]
	if !ok {
		s = &RunSummary{Run: run, SPERun: -1}
		p.summaries[run] = s
	}
	return s
}

// fill adds a batch result to the histograms. Only one goroutine may call it.
func (p *Processor) fill(res batchResult) {
	p.nBatches++
	if p.settings.Verbosity > 0 && p.nBatches%10 == 1 {
		logger.Info(fmt.Sprintf("Processing batch %d: run %d, %s chunk %d", p.nBatches, res.run, res.source, res.chunk), "processor")
	}

	s := p.summary(res.run)
	s.Batches++
	s.Hits += int64(res.hits)
	if res.state != nil {
		s.SPERun = res.state.speRun
		s.Status = res.state.status
	}
	if res.err != nil {
		s.SkippedBatches++
		logger.Error(fmt.Sprintf("skipping batch: %v", res.err))
		return
	}

	rh := p.hists.Run(res.run)
	if rh == nil {
		s.SkippedBatches++
		logger.Error(fmt.Sprintf("skipping batch: %s chunk %d: run %d has no histograms", res.source, res.chunk, res.run))
		return
	}
	s.Selected += int64(res.selected)
	s.Events += int64(res.events)
	s.Isolated += int64(len(res.isolated))
	if p.settings.Verbosity > 1 {
		logger.Info(fmt.Sprintf("%s chunk %d: %d hits, %d selected, %d isolated, %d events",
			res.source, res.chunk, res.hits, res.selected, len(res.isolated), res.events), "processor")
	}

	calibrated := res.state != nil && res.state.status == RunCalibrated
	thr := p.settings.Threshold
	for _, hit := range res.isolated {
		if hit.raw >= thr {
			rh.NormPE[hit.channel].Fill(hit.raw, 1)
		}
		if calibrated && hit.recal >= thr {
			rh.RecalPE[hit.channel].Fill(hit.recal, 1)
		}
		if hit.fit >= thr {
			rh.RecalFitPE[hit.channel].Fill(hit.fit, 1)
		}
	}
	for _, sums := range res.sums {
		if sums.raw >= thr {
			rh.SumPE.Fill(sums.raw, 1)
		}
		if calibrated && sums.recal >= thr {
			rh.SumPERecal.Fill(sums.recal, 1)
		}
		if sums.fit >= thr {
			rh.SumPEFitRecal.Fill(sums.fit, 1)
		}
	}
}

// ProcessBatch runs a single batch through the pipeline.
func (p *Processor) ProcessBatch(b Batch) {
	p.fill(p.safeProcess(job{batch: b, state: p.resolveRun(b.ExpectedRun)}))
}

// Run consumes reader until io.EOF. With more than one worker, batches are
// processed concurrently and their results are histogrammed by the caller's
// goroutine.
func (p *Processor) Run(ctx context.Context, reader HitReader) error {
	if p.settings.NumWorkers > 1 {
		return p.runWorkers(ctx, reader, p.settings.NumWorkers)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		j, err := p.nextJob(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		p.fill(p.safeProcess(j))
	}
}
