package controller

import (
	"mav-playback/engine"
	"mav-playback/services/ingest"
	"mav-playback/utils"
)

// SequenceController plays a batch of sequences back to back. Between two
// sequences it tells the engine to start a new trajectory segment; with a
// single sequence the engine is never signalled.
type SequenceController struct {
	playback *PlaybackController
	engine   engine.Engine
	metrics  *Metrics

	completed int
}

// NewSequenceController creates the batch driver around a playback loop.
func NewSequenceController(pc *PlaybackController, eng engine.Engine) *SequenceController {
	return &SequenceController{playback: pc, engine: eng, metrics: pc.metrics}
}

// Run plays every sequence in order and stops at the first failure.
func (sc *SequenceController) Run(seqs []*ingest.Sequence) error {
	for k, seq := range seqs {
		if err := sc.playback.RunSequence(seq); err != nil {
			return err
		}
		sc.completed++

		if k < len(seqs)-1 {
			utils.L().Info("sequence %d done, starting new segment for sequence %d", seq.Index, seqs[k+1].Index)
			sc.engine.BeginNewSegment()
			sc.metrics.observeSegment()
		}
	}
	return nil
}

// Completed returns how many sequences ran to the end.
func (sc *SequenceController) Completed() int { return sc.completed }

// LogStats prints per-sequence frame counts and the run's tracking times.
func (sc *SequenceController) LogStats() {
	stats := sc.playback.Stats()
	counts := make(map[int]int)
	var order []int
	for _, s := range stats.Sequences {
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	for _, s := range order {
		utils.L().Info("  sequence %-3d frames=%d", s, counts[s])
	}
	utils.L().Info("  tracking   median=%.3fms  mean=%.3fms  frames=%d",
		durationMs(stats.MedianDuration()), durationMs(stats.MeanDuration()), stats.Len())
}
