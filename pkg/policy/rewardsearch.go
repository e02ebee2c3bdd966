// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"math"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
)

// Reward-search constants, spec §4.D.3.
const (
	rewardSearchHorizon       = 5
	rewardSearchRebufPenalty  = 4.3
	rewardSearchSmoothPenalty = 1.0
)

// rewardSearch enumerates {0..K-1}^horizon and simulates the future buffer
// evolution of each combination from the current (index, lastQuality,
// buffer, downloadRateMbps), returning the head quality of whichever
// combination achieves the highest reward. Ties are broken by the first
// combination to reach the running maximum (spec §4.D.3's reward-search
// kernel). Grounded on abr_minerva.cc's get_best_rate/cartesian.
//
// This is the supplemented feature referenced in SPEC_FULL.md §D: the
// kernel itself is unchanged from the original's description, but here it
// is given a real caller (TargetPolicy/RemotePolicy) instead of being dead
// code, and enumeration is an explicit iterative odometer rather than
// recursion, per §9.
func rewardSearch(cat *catalogue.Catalogue, index, lastQuality int, buffer, downloadRateMbps float64) int {
	k := cat.NumQualities()
	if k == 0 {
		return 0
	}
	if downloadRateMbps <= 0 {
		// DivisionByZero edge (spec §7): insufficient information, stay put.
		return lastQuality
	}

	bitrates := cat.BitrateArray()
	n := cat.SegmentCount()

	bestReward := math.Inf(-1)
	bestHead := 0

	for _, combo := range cartesianProduct(k, rewardSearchHorizon) {
		reward := simulateCombo(cat, bitrates, n, combo, index, lastQuality, buffer, downloadRateMbps)
		if reward > bestReward {
			bestReward = reward
			bestHead = combo[0]
		}
	}
	return bestHead
}

// simulateCombo computes the reward of following combo for up to
// rewardSearchHorizon future segments starting at index, per spec §4.D.3.
//
// The original source's bound check (`index + position + 1 >=
// segments.size()`) compares against the outer per-quality-count
// dimension, which is almost always smaller than the per-quality segment
// count and would make the buffer-continuation branch dead code for any
// realistic catalogue (spec §9 open question 1). This implementation
// compares against n, the inner per-quality segment count, stopping the
// simulation for a combination once it runs past the last segment pair
// rather than indexing past the end of the ladder.
func simulateCombo(cat *catalogue.Catalogue, bitrates []int, n int, combo []int, index, lastQuality int, buffer, downloadRateMbps float64) float64 {
	var totalBitrate, rebuffer, smoothness float64
	prevQuality := lastQuality

	for position, q := range combo {
		segIndex := index + position
		if segIndex+1 > n {
			break
		}
		cur, ok1 := cat.Info(q, segIndex)
		next, ok2 := cat.Info(q, segIndex+1)
		if !ok1 || !ok2 {
			break
		}

		downloadTimeSec := 8 * float64(cur.Size) / 1e6 / downloadRateMbps
		if buffer < downloadTimeSec {
			rebuffer += downloadTimeSec - buffer
			buffer = 0
		} else {
			buffer -= downloadTimeSec
		}
		buffer += next.StartTime - cur.StartTime

		totalBitrate += float64(bitrates[q]) / 1000
		smoothness += math.Abs(float64(bitrates[q]-bitrates[prevQuality])) / 1000
		prevQuality = q
	}

	return totalBitrate - rewardSearchRebufPenalty*rebuffer - rewardSearchSmoothPenalty*smoothness
}

// cartesianProduct enumerates {0..k-1}^horizon as an explicit iterative
// odometer (no recursion, spec §9), matching the size the spec calls out
// as small enough to need no memoisation (k^horizon = 3^5 = 243 for common
// configs).
func cartesianProduct(k, horizon int) [][]int {
	if k <= 0 || horizon <= 0 {
		return nil
	}
	total := 1
	for i := 0; i < horizon; i++ {
		total *= k
	}

	combos := make([][]int, 0, total)
	counters := make([]int, horizon)
	for c := 0; c < total; c++ {
		combo := make([]int, horizon)
		copy(combo, counters)
		combos = append(combos, combo)

		for pos := horizon - 1; pos >= 0; pos-- {
			counters[pos]++
			if counters[pos] < k {
				break
			}
			counters[pos] = 0
		}
	}
	return combos
}
