// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"testing"
	"time"

	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestRemoteWithoutMinRTTBehavesLikeTarget(t *testing.T) {
	controller := cc.NewTestController()
	rp := NewRemote(fourSecondLadder(t, 10), controller)
	d := rp.Decide()
	require.Equal(t, schema.Decision{Index: 1, Quality: 0, Timestamp: 0}, d)
}

func TestRemoteBlendsCCThroughputIntoRateEstimate(t *testing.T) {
	controller := cc.NewTestController()
	controller.SetMinRTT(20 * time.Millisecond)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	rp := NewRemote(fourSecondLadder(t, 10), controller)
	rp.clock = func() time.Time { return now }

	rp.Decide() // first sample just arms lastSample

	telemetrySeed := rp.target.downloadRateMbps
	controller.AddAckedBytes(2_000_000) // 16Mb
	now = base.Add(1 * time.Second)
	rp.Decide()

	require.NotEqual(t, telemetrySeed, rp.target.downloadRateMbps)
	require.Greater(t, rp.target.downloadRateMbps, telemetrySeed)
}
