// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"testing"

	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestRandomFirstSegmentIsAlwaysQualityZero(t *testing.T) {
	r := NewRandom(fourSecondLadder(t, 5))
	d := r.Decide()
	require.Equal(t, schema.Decision{Index: 1, Quality: 0, Timestamp: 0}, d)
}

func TestRandomSubsequentSegmentsStayInLadderBounds(t *testing.T) {
	r := NewRandom(fourSecondLadder(t, 5))
	r.Decide()
	for i := 0; i < 20; i++ {
		r.RegisterMetrics(schema.Metrics{Segments: []schema.Segment{
			{Index: i + 1, State: schema.StateDownloaded, Timestamp: (i + 1) * 100},
		}})
		d := r.Decide()
		require.GreaterOrEqual(t, d.Quality, 0)
		require.Less(t, d.Quality, 3)
	}
}
