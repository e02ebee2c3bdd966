// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/pipeline"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// Buffer-based (BB) thresholds, spec §4.D.2.
const (
	bbSecondMS  = 1000
	bbReservoir = 5000
	bbCushion   = 10000
)

// BufferBased is the BB policy of spec §4.D.2, grounded on abr_base.cc's
// BBAbr.
type BufferBased struct {
	sp  *pipeline.SegmentProgress
	cat *catalogue.Catalogue

	lastPlayerTime   schema.Value
	lastBufferLevel  schema.Value
	lastSegmentLenMS int // seeded from the catalogue's nominal segment length (spec §9)
}

// NewBB returns a BB policy bound to cat's quality ladder.
func NewBB(cat *catalogue.Catalogue) *BufferBased {
	return &BufferBased{
		sp:               pipeline.New(),
		cat:              cat,
		lastSegmentLenMS: cat.NominalSegmentLengthMS(),
	}
}

func (b *BufferBased) RegisterAbort(index int) { b.sp.RegisterAbort(index) }

func (b *BufferBased) RegisterMetrics(m schema.Metrics) {
	b.sp.RegisterMetrics(m)
	for _, v := range m.PlayerTime {
		if v.Timestamp > b.lastPlayerTime.Timestamp {
			b.lastPlayerTime = v
		}
	}
	for _, v := range m.BufferLevel {
		if v.Timestamp > b.lastBufferLevel.Timestamp {
			b.lastBufferLevel = v
		}
	}
}

func (b *BufferBased) Decide() schema.Decision {
	return b.sp.Decide(b.decideQuality)
}

func (b *BufferBased) decideQuality(index int) int {
	if index == 1 {
		return 0
	}

	buffer := float64(b.lastBufferLevel.Value)

	if seg, ok := b.sp.LastSegment(index - 1); ok && seg.State == schema.StateProgress && seg.Total > 0 {
		start := 0
		if index > 2 {
			if prev, ok := b.sp.LastSegment(index - 2); ok {
				start = prev.Timestamp
			}
		}
		now := seg.Timestamp
		p := float64(seg.Loaded) / float64(seg.Total)
		if p > 0 {
			estimatedRemainingMS := float64(now-start) * (1 - p) / p

			if cur, ok1 := b.cat.Info(0, index); ok1 {
				if next, ok2 := b.cat.Info(0, index+1); ok2 {
					b.lastSegmentLenMS = int(bbSecondMS * (next.StartTime - cur.StartTime))
				}
			}

			bonus := float64(b.lastSegmentLenMS) - estimatedRemainingMS
			buffer += bonus
		}
	}

	bitrateArray := b.cat.BitrateArray()
	n := len(bitrateArray)
	if n == 0 {
		return 0
	}

	var rate float64
	switch {
	case buffer <= bbReservoir:
		rate = float64(bitrateArray[0])
	case buffer >= bbReservoir+bbCushion:
		rate = float64(bitrateArray[n-1])
	default:
		rate = float64(bitrateArray[0]) + float64(bitrateArray[n-1]-bitrateArray[0])*(buffer-bbReservoir)/bbCushion
	}

	quality := 0
	for i := n - 1; i >= 0; i-- {
		quality = i
		if rate >= float64(bitrateArray[i]) {
			break
		}
	}
	return quality
}
