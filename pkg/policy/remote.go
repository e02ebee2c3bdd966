// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"time"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// RemotePolicy mirrors abr_remote.h's RemoteAbr: a TargetPolicy wrapper
// that additionally folds congestion-control observables (min_rtt,
// acked_bytes) into the throughput estimate handed to the reward-search
// kernel, re-expressing getTargetDecision's
// (avg_bandwidth, current_bandwidth, last_buffer, last_rtt, ...)
// parameter list as a blended rate estimate rather than a bespoke struct
// (SPEC_FULL.md §D). Only abr_remote.h's declaration was retrieved, not
// its body, so the blending rule below is a judgment call: see DESIGN.md.
type RemotePolicy struct {
	target *TargetPolicy
	cc     cc.Controller
	clock  func() time.Time

	lastSample time.Time
}

// NewRemote returns a RemotePolicy bound to cat's quality ladder and
// reading throughput/RTT from controller.
func NewRemote(cat *catalogue.Catalogue, controller cc.Controller) *RemotePolicy {
	return &RemotePolicy{
		target: NewTarget(cat),
		cc:     controller,
		clock:  time.Now,
	}
}

func (p *RemotePolicy) RegisterAbort(index int)         { p.target.RegisterAbort(index) }
func (p *RemotePolicy) RegisterMetrics(m schema.Metrics) { p.target.RegisterMetrics(m) }

func (p *RemotePolicy) Decide() schema.Decision {
	p.blendCCEstimate()
	return p.target.Decide()
}

// blendCCEstimate folds a CC-derived throughput sample (acked bytes over
// the elapsed wall-clock window since the last sample) into the target
// policy's telemetry-only rate estimate, averaging the two the way
// getTargetDecision takes both an avg_bandwidth and a current_bandwidth
// input. The min_rtt value itself is not used; only its availability is
// checked (spec §7 CCHookUnavailable: absence is not an error, no CC sample
// is taken and the estimate stays the telemetry-only rate).
func (p *RemotePolicy) blendCCEstimate() {
	if _, ok := p.cc.MinRTT(); !ok {
		return
	}

	now := p.clock()
	if p.lastSample.IsZero() {
		p.lastSample = now
		return
	}
	elapsed := now.Sub(p.lastSample)
	p.lastSample = now
	if elapsed <= 0 {
		return
	}

	bytes := p.cc.AckedBytes()
	p.cc.ResetAckedBytes()
	if bytes == 0 {
		return
	}

	ccRateMbps := 8 * float64(bytes) / 1e6 / elapsed.Seconds()
	if ccRateMbps <= 0 {
		return
	}
	p.target.downloadRateMbps = (p.target.downloadRateMbps + ccRateMbps) / 2
}
