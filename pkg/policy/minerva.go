// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"math"
	"time"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// Minerva tuning constants, spec §4.D.3.
const (
	minervaUpdateIntervalFactor    = 25
	minervaMinRTTStartMS           = 10
	minervaMaxRTTStartMS           = 100
	minervaRebufPenalty            = 4.3
	minervaSmoothPenalty           = 1.0
	minervaHorizon                 = 5
	minervaMovingAverageProportion = 0.9
	minervaVarianceQueueLength     = 4
)

// Minerva is the weight-update policy of spec §4.D.3. It never picks a
// per-segment quality: Decide always returns the no-op sentinel, and its
// real work is the periodic link-weight update it drives off a wall clock
// and the supplied CC controller. Grounded on abr_minerva.cc.
//
// Minerva does not embed a pipeline.SegmentProgress: per §9 it is its own
// top-level variant, tracking only the Loading telemetry it needs.
type Minerva struct {
	cat *catalogue.Catalogue
	cc  cc.Controller

	clock func() time.Time

	lastIndex   int // -1 until the first Loading telemetry arrives
	lastSegment map[int]schema.Segment

	pastRates        []int
	movingAvgRate    float64 // sentinel -1 until seeded
	timestamp        time.Time
	updateIntervalMS int
	startedUpdate    bool
}

// NewMinerva returns a Minerva policy bound to cat's quality ladder and
// driven by controller.
func NewMinerva(cat *catalogue.Catalogue, controller cc.Controller) *Minerva {
	return &Minerva{
		cat:           cat,
		cc:            controller,
		clock:         time.Now,
		lastIndex:     -1,
		lastSegment:   make(map[int]schema.Segment),
		movingAvgRate: -1,
	}
}

func (m *Minerva) RegisterAbort(int) {
	// Minerva does not gate on aborts: it drives CC weight updates, not
	// per-segment emission.
}

func (m *Minerva) RegisterMetrics(metrics schema.Metrics) {
	for _, s := range metrics.Segments {
		if s.State != schema.StateLoading {
			continue
		}
		m.lastSegment[s.Index] = s
		if s.Index > m.lastIndex {
			m.lastIndex = s.Index
		}
	}
}

// Decide runs one step of Minerva's interval state machine and always
// returns the no-op sentinel decision (spec §4.D.3).
func (m *Minerva) Decide() schema.Decision {
	minRTT, ok := m.cc.MinRTT()
	if !ok {
		return schema.Decision{}
	}
	intervalMS := clampInt(int(minRTT.Milliseconds()), minervaMinRTTStartMS, minervaMaxRTTStartMS) * minervaUpdateIntervalFactor

	now := m.clock()
	if m.timestamp.IsZero() {
		m.updateIntervalMS = intervalMS
		m.timestamp = now
		return schema.Decision{}
	}

	elapsedMS := now.Sub(m.timestamp).Milliseconds()

	if !m.startedUpdate && elapsedMS > int64(m.updateIntervalMS)/2 {
		m.onStartRateUpdate()
		m.startedUpdate = true
	}

	if elapsedMS > int64(m.updateIntervalMS) {
		m.onWeightUpdate()
		m.startedUpdate = false
		m.updateIntervalMS = intervalMS
		m.timestamp = now
	}

	return schema.Decision{}
}

func (m *Minerva) onStartRateUpdate() {
	m.cc.ResetAckedBytes()
}

func (m *Minerva) onWeightUpdate() {
	halfSec := float64(m.updateIntervalMS) / 2000
	if halfSec <= 0 {
		return
	}

	currentRateKbps := 8 * float64(m.cc.AckedBytes()) / halfSec / 1000

	m.pastRates = append(m.pastRates, int(currentRateKbps))
	if len(m.pastRates) > minervaVarianceQueueLength {
		m.pastRates = m.pastRates[1:]
	}

	conservative := m.conservativeRate()
	if m.movingAvgRate == -1 {
		m.movingAvgRate = conservative
	} else {
		m.movingAvgRate = minervaMovingAverageProportion*m.movingAvgRate + (1-minervaMovingAverageProportion)*conservative
	}

	utility := m.computeUtility()
	if utility != 0 {
		m.cc.SetLinkWeight(m.movingAvgRate / utility)
	}
}

// conservativeRate implements spec §4.D.3's conservative_rate().
func (m *Minerva) conservativeRate() float64 {
	n := len(m.pastRates)
	if n == 0 {
		return 0
	}
	back := float64(m.pastRates[n-1])
	if n < minervaVarianceQueueLength {
		return 0.8 * back
	}

	mean := 0.0
	for _, r := range m.pastRates {
		mean += float64(r)
	}
	mean /= float64(n)

	variance := 0.0
	for _, r := range m.pastRates {
		d := float64(r) - mean
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	return math.Max(0.8*back, back-0.5*stddev)
}

// computeUtility implements spec §4.D.3's compute_utility(): VMAF
// interpolation at the current moving-average rate.
func (m *Minerva) computeUtility() float64 {
	if m.lastIndex == -1 {
		return 0
	}

	k := m.cat.NumQualities()
	if k == 0 {
		return 0
	}

	type band struct {
		rate float64
		vmaf float64
	}
	bands := make([]band, k)
	for q := 0; q < k; q++ {
		info, ok := m.cat.Info(q, m.lastIndex)
		if !ok {
			return 0
		}
		segLenMS, ok := m.cat.SegmentDurationMS(q, m.lastIndex)
		if !ok || segLenMS <= 0 {
			return 0
		}
		segLenSec := float64(segLenMS) / 1000
		rateKbps := 8 * float64(info.Size) / segLenSec / 1000
		bands[q] = band{rate: rateKbps, vmaf: info.Vmaf}
	}

	if m.movingAvgRate <= bands[0].rate {
		return bands[0].vmaf
	}
	if m.movingAvgRate >= bands[k-1].rate {
		return bands[k-1].vmaf
	}

	for q := 0; q < k-1; q++ {
		if m.movingAvgRate >= bands[q].rate && m.movingAvgRate <= bands[q+1].rate {
			span := bands[q+1].rate - bands[q].rate
			if span == 0 {
				return bands[q].vmaf
			}
			frac := (m.movingAvgRate - bands[q].rate) / span
			return bands[q].vmaf + frac*(bands[q+1].vmaf-bands[q].vmaf)
		}
	}
	return bands[k-1].vmaf
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
