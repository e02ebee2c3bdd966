// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package metricsstore

import (
	"sync"
	"testing"

	"github.com/Dash-Industry-Forum/abrcore/pkg/schema"
	"github.com/stretchr/testify/require"
)

func TestDrainMetricsIsAtomicTakeAndClear(t *testing.T) {
	s := New()
	s.AddMetrics(schema.Metrics{PlayerTime: []schema.Value{{Value: 1, Timestamp: 10}}})
	s.AddMetrics(schema.Metrics{PlayerTime: []schema.Value{{Value: 2, Timestamp: 20}}})

	drained := s.DrainMetrics()
	require.Len(t, drained, 2)
	require.Empty(t, s.DrainMetrics())
}

func TestDrainAbortsIsAtomicTakeAndClear(t *testing.T) {
	s := New()
	s.AddAbort(3)
	s.AddAbort(5)

	drained := s.DrainAborts()
	require.ElementsMatch(t, []int{3, 5}, drained)
	require.Empty(t, s.DrainAborts())
}

func TestDrainBundlesBothQueues(t *testing.T) {
	s := New()
	s.AddMetrics(schema.Metrics{})
	s.AddAbort(1)

	snap := s.Drain()
	require.Len(t, snap.Metrics, 1)
	require.Equal(t, []int{1}, snap.Aborts)

	empty := s.Drain()
	require.Empty(t, empty.Metrics)
	require.Empty(t, empty.Aborts)
}

// TestConcurrentAddDoesNotRace exercises the single writer lock from many
// goroutines; run with -race to check for data races.
func TestConcurrentAddDoesNotRace(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.AddMetrics(schema.Metrics{Segments: []schema.Segment{{Index: i + 1}}})
		}(i)
		go func(i int) {
			defer wg.Done()
			s.AddAbort(i)
		}(i)
	}
	wg.Wait()

	snap := s.Drain()
	require.Len(t, snap.Metrics, 50)
	require.Len(t, snap.Aborts, 50)
}
