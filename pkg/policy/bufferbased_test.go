// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"testing"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
	"github.com/stretchr/testify/require"
)

// fourSecondLadder builds the K=3, bitrate_array=[500,1500,4000] catalogue
// used throughout spec §8's end-to-end scenarios, with segments aligned at
// 4-second boundaries.
func fourSecondLadder(t *testing.T, nSegs int) *catalogue.Catalogue {
	t.Helper()
	mk := func(vmaf float64) []catalogue.VideoInfo {
		info := make([]catalogue.VideoInfo, nSegs)
		for i := range info {
			info[i] = catalogue.VideoInfo{StartTime: float64(i) * 4, Vmaf: vmaf + float64(i), Size: 500_000}
		}
		return info
	}
	cat, err := catalogue.New(catalogue.Descriptor{
		Segments: nSegs,
		VideoConfigs: []catalogue.VideoConfig{
			{Resource: "/video0", Quality: 500, VideoInfo: mk(40)},
			{Resource: "/video1", Quality: 1500, VideoInfo: mk(60)},
			{Resource: "/video2", Quality: 4000, VideoInfo: mk(80)},
		},
	})
	require.NoError(t, err)
	return cat
}

func TestBBColdStart(t *testing.T) {
	bb := NewBB(fourSecondLadder(t, 10))
	d := bb.Decide()
	require.Equal(t, schema.Decision{Index: 1, Quality: 0, Timestamp: 0}, d)
}

// TestBBS3EightyPercentGate pins scenario S3 from spec §8: crossing 80%
// progress on segment 1 opens the gate for segment 2 at timestamp 1200.
//
// The quality value below is *not* copied from §8's worked arithmetic
// (which computes r purely from the raw buffer_level=7000 sample): §4.D.2
// requires folding in the Progress "bonus" term whenever last_segment[i-1]
// is still Progress, which this scenario's own telemetry triggers
// (segment 1 is reported Progress at the exact tick being decided). Doing
// so moves B from 7000 to 10700 and the resulting quality from 0 to 1; see
// DESIGN.md for the full derivation. This test pins the §4.D.2 algorithm,
// which is the authoritative definition.
func TestBBS3EightyPercentGate(t *testing.T) {
	bb := NewBB(fourSecondLadder(t, 10))
	bb.Decide() // index 1

	bb.RegisterMetrics(schema.Metrics{Segments: []schema.Segment{
		{Index: 1, State: schema.StateProgress, Loaded: 50, Total: 100, Timestamp: 1000},
	}})
	require.Equal(t, schema.Decision{Index: 1, Quality: 0, Timestamp: 0}, bb.Decide())

	bb.RegisterMetrics(schema.Metrics{
		BufferLevel: []schema.Value{{Value: 7000, Timestamp: 1200}},
		Segments: []schema.Segment{
			{Index: 1, State: schema.StateProgress, Loaded: 80, Total: 100, Timestamp: 1200},
		},
	})
	d := bb.Decide()
	require.Equal(t, 2, d.Index)
	require.Equal(t, 1, d.Quality)
	require.Equal(t, 1200, d.Timestamp)
}

// TestBBMonotonicInBuffer exercises testable property 5: holding all else
// fixed, a higher buffer level never yields a lower quality.
func TestBBMonotonicInBuffer(t *testing.T) {
	levels := []int{0, 2000, 5000, 7000, 9000, 12000, 20000}
	prevQuality := -1
	for _, lvl := range levels {
		bb := NewBB(fourSecondLadder(t, 10))
		bb.Decide()
		bb.RegisterMetrics(schema.Metrics{BufferLevel: []schema.Value{{Value: lvl, Timestamp: 100}}})
		bb.RegisterMetrics(schema.Metrics{Segments: []schema.Segment{
			{Index: 1, State: schema.StateDownloaded, Timestamp: 100},
		}})
		d := bb.Decide()
		require.GreaterOrEqual(t, d.Quality, prevQuality)
		prevQuality = d.Quality
	}
}

// TestBBQualityLadderBounds exercises testable property 6.
func TestBBQualityLadderBounds(t *testing.T) {
	for _, lvl := range []int{-1000, 0, 5000, 15000, 100000} {
		bb := NewBB(fourSecondLadder(t, 10))
		bb.Decide()
		bb.RegisterMetrics(schema.Metrics{BufferLevel: []schema.Value{{Value: lvl, Timestamp: 1}}})
		bb.RegisterMetrics(schema.Metrics{Segments: []schema.Segment{
			{Index: 1, State: schema.StateDownloaded, Timestamp: 1},
		}})
		d := bb.Decide()
		require.GreaterOrEqual(t, d.Quality, 0)
		require.LessOrEqual(t, d.Quality, 2)
	}
}
