// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package pipeline implements the SegmentProgress decision state machine
// from spec §4.C: it tracks per-index segment telemetry, gates emission of
// the next decision, and memoises decisions so repeated calls without new
// telemetry are idempotent. It is grounded on abr_base.cc's
// SegmentProgressAbr.
//
// SegmentProgress itself never picks a quality: it calls back into a
// QualityFunc supplied at Decide time, so policies (pkg/policy) can reuse
// this exact state machine instead of reimplementing the gate.
package pipeline

import (
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// QualityFunc picks a quality in [0, K) for the given 1-based segment
// index, consulting whatever pipeline/telemetry state it needs through the
// SegmentProgress accessors.
type QualityFunc func(index int) int

// SegmentProgress is the per-connection pipeline state of spec §3. It is
// not safe for concurrent use: callers must serialise RegisterAbort,
// RegisterMetrics, and Decide (spec §5).
type SegmentProgress struct {
	lastSegment   map[int]schema.Segment
	decisions     map[int]schema.Decision
	aborted       map[int]struct{}
	decisionIndex int
	lastTimestamp int
}

// New returns a pipeline with DecisionIndex starting at 1, per spec §3.
func New() *SegmentProgress {
	return &SegmentProgress{
		lastSegment:   make(map[int]schema.Segment),
		decisions:     make(map[int]schema.Decision),
		aborted:       make(map[int]struct{}),
		decisionIndex: 1,
	}
}

// RegisterAbort marks index as aborted, opening the emission gate for the
// next index regardless of download progress.
func (sp *SegmentProgress) RegisterAbort(index int) {
	sp.aborted[index] = struct{}{}
}

// RegisterMetrics merges a telemetry batch into the pipeline state per the
// merge rules of spec §4.C. Segment ordering within the batch does not
// affect the result.
func (sp *SegmentProgress) RegisterMetrics(m schema.Metrics) {
	for _, s := range m.Segments {
		if s.Timestamp > sp.lastTimestamp {
			sp.lastTimestamp = s.Timestamp
		}

		switch s.State {
		case schema.StateLoading:
			// The base pipeline ignores Loading telemetry; Minerva-family
			// policies consume it directly (spec §4.D.3).
		case schema.StateDownloaded:
			existing, ok := sp.lastSegment[s.Index]
			if !ok || existing.State != schema.StateDownloaded {
				sp.lastSegment[s.Index] = s
			}
		case schema.StateProgress:
			existing, ok := sp.lastSegment[s.Index]
			if !ok || (existing.State == schema.StateProgress && existing.Timestamp < s.Timestamp) {
				sp.lastSegment[s.Index] = s
			}
		}
	}
}

// LastSegment returns the last observed telemetry for index, if any.
func (sp *SegmentProgress) LastSegment(index int) (schema.Segment, bool) {
	s, ok := sp.lastSegment[index]
	return s, ok
}

// Aborted reports whether index has been registered as aborted.
func (sp *SegmentProgress) Aborted(index int) bool {
	_, ok := sp.aborted[index]
	return ok
}

// LastTimestamp is the monotonic max of all telemetry timestamps ever
// observed.
func (sp *SegmentProgress) LastTimestamp() int {
	return sp.lastTimestamp
}

// DecisionIndex is the next index to emit.
func (sp *SegmentProgress) DecisionIndex() int {
	return sp.decisionIndex
}

// shouldSend implements the emission gate of spec §4.C.
func (sp *SegmentProgress) shouldSend(index int) bool {
	if index == 1 {
		return true
	}
	prev, ok := sp.lastSegment[index-1]
	if !ok {
		return false
	}
	if prev.State == schema.StateDownloaded {
		return true
	}
	if prev.Total > 0 && float64(prev.Loaded)/float64(prev.Total) >= 0.80 {
		return true
	}
	if sp.Aborted(index - 1) {
		return true
	}
	return false
}

// Decide returns a new decision for DecisionIndex if the gate is open and
// none has been memoised yet, or the most recently memoised decision
// otherwise. Repeated calls without new telemetry return an identical
// Decision (spec §4.C idempotence).
func (sp *SegmentProgress) Decide(quality QualityFunc) schema.Decision {
	k := sp.decisionIndex
	if _, exists := sp.decisions[k]; !exists && sp.shouldSend(k) {
		d := schema.Decision{
			Index:     k,
			Quality:   quality(k),
			Timestamp: sp.lastTimestamp,
		}
		sp.decisions[k] = d
		sp.decisionIndex = k + 1
		return d
	}
	// k == 1 with a closed gate means no decision has ever been emitted;
	// callers must not call Decide before the bootstrap tick opens it.
	return sp.decisions[k-1]
}
