// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"testing"

	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestTargetColdStartIsQualityZero(t *testing.T) {
	tp := NewTarget(fourSecondLadder(t, 10))
	d := tp.Decide()
	require.Equal(t, schema.Decision{Index: 1, Quality: 0, Timestamp: 0}, d)
}

func TestTargetRateEstimateUpdatesOnSegmentCompletion(t *testing.T) {
	tp := NewTarget(fourSecondLadder(t, 10))
	tp.Decide()

	tp.RegisterMetrics(schema.Metrics{Segments: []schema.Segment{
		{Index: 1, State: schema.StateDownloaded, Total: 500_000, Timestamp: 0},
	}})
	tp.RegisterMetrics(schema.Metrics{
		BufferLevel: []schema.Value{{Value: 8000, Timestamp: 2000}},
		Segments: []schema.Segment{
			{Index: 2, State: schema.StateDownloaded, Total: 500_000, Timestamp: 2000},
		},
	})
	// 500,000 bytes in 2s = 2Mb/s.
	require.InDelta(t, 2.0, tp.downloadRateMbps, 0.001)

	d := tp.Decide()
	require.Equal(t, 2, d.Index)
	require.GreaterOrEqual(t, d.Quality, 0)
	require.Less(t, d.Quality, 3)
}
