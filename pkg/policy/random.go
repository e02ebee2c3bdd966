// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"math/rand/v2"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/pipeline"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
)

// Random is the baseline policy of spec §4.D.1: always quality 0 for the
// bootstrap segment, uniform random thereafter.
type Random struct {
	sp  *pipeline.SegmentProgress
	cat *catalogue.Catalogue
}

// NewRandom returns a Random policy bound to cat's quality ladder.
func NewRandom(cat *catalogue.Catalogue) *Random {
	return &Random{sp: pipeline.New(), cat: cat}
}

func (r *Random) RegisterAbort(index int)         { r.sp.RegisterAbort(index) }
func (r *Random) RegisterMetrics(m schema.Metrics) { r.sp.RegisterMetrics(m) }

func (r *Random) Decide() schema.Decision {
	return r.sp.Decide(r.decideQuality)
}

func (r *Random) decideQuality(index int) int {
	if index == 1 {
		return 0
	}
	k := r.cat.NumQualities()
	if k <= 1 {
		return 0
	}
	return rand.IntN(k)
}
