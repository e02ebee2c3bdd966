// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/pipeline"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// TargetPolicy is the reward-search-driven variant referenced in
// abr_remote.h (TargetAbr2), supplementing the spec.md distillation's
// "provided for completeness" reward-search kernel with a real caller
// (SPEC_FULL.md §D). It wires through the same SegmentProgress gate as
// Random/BufferBased, picking the emitted quality by running rewardSearch
// over its own telemetry-derived throughput estimate.
type TargetPolicy struct {
	sp  *pipeline.SegmentProgress
	cat *catalogue.Catalogue

	lastBufferLevel  schema.Value
	lastQuality      int
	downloadRateMbps float64 // telemetry-derived estimate, seeded from the lowest rung
}

// NewTarget returns a TargetPolicy bound to cat's quality ladder.
func NewTarget(cat *catalogue.Catalogue) *TargetPolicy {
	bitrates := cat.BitrateArray()
	seed := 0.0
	if len(bitrates) > 0 {
		seed = float64(bitrates[0]) / 1000
	}
	return &TargetPolicy{
		sp:               pipeline.New(),
		cat:              cat,
		downloadRateMbps: seed,
	}
}

func (p *TargetPolicy) RegisterAbort(index int) { p.sp.RegisterAbort(index) }

func (p *TargetPolicy) RegisterMetrics(m schema.Metrics) {
	p.sp.RegisterMetrics(m)
	for _, v := range m.BufferLevel {
		if v.Timestamp > p.lastBufferLevel.Timestamp {
			p.lastBufferLevel = v
		}
	}
	p.updateRateEstimate(m)
}

// updateRateEstimate refreshes downloadRateMbps whenever a segment
// completes, from the elapsed time since the previous completed segment.
func (p *TargetPolicy) updateRateEstimate(m schema.Metrics) {
	for _, s := range m.Segments {
		if s.State != schema.StateDownloaded || s.Total == 0 {
			continue
		}
		prev, ok := p.sp.LastSegment(s.Index - 1)
		if !ok || prev.State != schema.StateDownloaded {
			continue
		}
		elapsedMS := s.Timestamp - prev.Timestamp
		if elapsedMS <= 0 {
			continue
		}
		rate := 8 * float64(s.Total) / 1e6 / (float64(elapsedMS) / 1000)
		if rate > 0 {
			p.downloadRateMbps = rate
		}
	}
}

func (p *TargetPolicy) Decide() schema.Decision {
	return p.sp.Decide(p.decideQuality)
}

func (p *TargetPolicy) decideQuality(index int) int {
	if index == 1 {
		p.lastQuality = 0
		return 0
	}
	bufferSec := float64(p.lastBufferLevel.Value) / 1000
	q := rewardSearch(p.cat, index, p.lastQuality, bufferSec, p.downloadRateMbps)
	p.lastQuality = q
	return q
}
