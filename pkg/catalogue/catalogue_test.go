// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package catalogue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func threeQualityDescriptor() Descriptor {
	mk := func(n int, vmafBase float64) []VideoInfo {
		info := make([]VideoInfo, n)
		for i := range info {
			info[i] = VideoInfo{
				StartTime: float64(i) * 4,
				Vmaf:      vmafBase + float64(i),
				Size:      uint64(100_000 * (i + 1)),
			}
		}
		return info
	}
	return Descriptor{
		Domain:   "test",
		Segments: 5,
		VideoConfigs: []VideoConfig{
			{Resource: "/video1", Quality: 1500, VideoInfo: mk(5, 60)},
			{Resource: "/video0", Quality: 500, VideoInfo: mk(5, 40)},
			{Resource: "/video2", Quality: 4000, VideoInfo: mk(5, 80)},
		},
	}
}

func TestNewSortsByBitrate(t *testing.T) {
	cat, err := New(threeQualityDescriptor())
	require.NoError(t, err)
	require.Equal(t, []int{500, 1500, 4000}, cat.BitrateArray())
	require.Equal(t, 3, cat.NumQualities())
	require.Equal(t, 5, cat.SegmentCount())

	info, ok := cat.Info(0, 1)
	require.True(t, ok)
	require.Equal(t, 40.0, info.Vmaf) // lowest bitrate rung keeps its own VMAF table
}

func TestNewRejectsEmptyCatalogue(t *testing.T) {
	_, err := New(Descriptor{})
	require.ErrorIs(t, err, ErrEmptyCatalogue)
}

func TestNewRejectsInconsistentLadder(t *testing.T) {
	d := threeQualityDescriptor()
	d.VideoConfigs[0].VideoInfo = d.VideoConfigs[0].VideoInfo[:3]
	_, err := New(d)
	require.ErrorIs(t, err, ErrInconsistentLadder)
}

func TestInfoClampsOutOfRangeLookups(t *testing.T) {
	cat, err := New(threeQualityDescriptor())
	require.NoError(t, err)

	_, ok := cat.Info(0, 999)
	require.False(t, ok)
	_, ok = cat.Info(99, 1)
	require.True(t, ok, "quality is clamped to the top rung instead of panicking")
}

func TestSegmentDurationMSFallsBackNearEnd(t *testing.T) {
	cat, err := New(threeQualityDescriptor())
	require.NoError(t, err)

	ms, ok := cat.SegmentDurationMS(0, 1)
	require.True(t, ok)
	require.Equal(t, 4000, ms)

	// Last index has no "next" segment, so it reuses the prior gap.
	last, ok := cat.SegmentDurationMS(0, cat.SegmentCount())
	require.True(t, ok)
	require.Equal(t, ms, last)
}

func TestNominalSegmentLengthSeeded(t *testing.T) {
	cat, err := New(threeQualityDescriptor())
	require.NoError(t, err)
	require.Equal(t, 4000, cat.NominalSegmentLengthMS())
}
