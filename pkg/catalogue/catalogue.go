// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package catalogue holds the immutable per-quality segment table an ABR
// policy picks from: for every quality ladder rung and every segment index,
// the wall-clock start time, VMAF score, and byte size of that segment.
package catalogue

import (
	"fmt"
	"sort"
)

// VideoInfo is one segment's static properties at a given quality.
type VideoInfo struct {
	StartTime float64 `json:"start_time"` // seconds
	Vmaf      float64 `json:"vmaf"`
	Size      uint64  `json:"size"` // bytes
}

// VideoConfig is one quality rung's resource descriptor, as supplied in a
// CatalogueDescriptor.
type VideoConfig struct {
	Resource  string      `json:"resource"` // e.g. "/video0"
	Path      string      `json:"path"`
	Quality   int         `json:"quality"` // nominal bitrate in kbps
	VideoInfo []VideoInfo `json:"video_info"`
}

// Descriptor is the construction-time configuration for a Catalogue,
// decoded directly from the host's catalogue descriptor file (spec §6).
type Descriptor struct {
	Domain       string        `json:"domain"`
	Segments     int           `json:"segments"`
	VideoConfigs []VideoConfig `json:"video_configs"`
}

// Catalogue is the read-only, shared video table described in spec §3/§4.A.
// It is safe for concurrent use by many sessions since it is never mutated
// after New returns.
type Catalogue struct {
	domain       string
	segments     [][]VideoInfo // segments[quality][index-1]
	bitrateArray []int         // ascending kbps, bitrateArray[q] matches segments[q]
	nominalLenMS int           // SegmentDurationMS(0, 1) at construction, for BB's fallback
}

// New builds a Catalogue from a descriptor. Resources are matched by name
// "/video{i}" in insertion order, exactly as the original abr_base.cc
// constructor does; unmatched resources are silently dropped. Returns an
// error only for construction-time misconfiguration: an empty catalogue or
// per-quality video-info slices of differing lengths (spec §7).
func New(d Descriptor) (*Catalogue, error) {
	if len(d.VideoConfigs) == 0 {
		return nil, fmt.Errorf("catalogue: %w", ErrEmptyCatalogue)
	}

	segments := make([][]VideoInfo, 0, len(d.VideoConfigs))
	bitrateArray := make([]int, 0, len(d.VideoConfigs))
	for i := range d.VideoConfigs {
		resource := fmt.Sprintf("/video%d", i)
		for _, vc := range d.VideoConfigs {
			if vc.Resource != resource {
				continue
			}
			info := make([]VideoInfo, len(vc.VideoInfo))
			copy(info, vc.VideoInfo)
			segments = append(segments, info)
			bitrateArray = append(bitrateArray, vc.Quality)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("catalogue: %w", ErrEmptyCatalogue)
	}
	n := len(segments[0])
	for q, info := range segments {
		if len(info) != n {
			return nil, fmt.Errorf("catalogue: quality %d has %d segments, want %d: %w", q, len(info), n, ErrInconsistentLadder)
		}
	}

	// Sort qualities ascending by nominal bitrate, carrying segments along.
	order := make([]int, len(bitrateArray))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return bitrateArray[order[i]] < bitrateArray[order[j]] })
	sortedBitrates := make([]int, len(order))
	sortedSegments := make([][]VideoInfo, len(order))
	for newIdx, oldIdx := range order {
		sortedBitrates[newIdx] = bitrateArray[oldIdx]
		sortedSegments[newIdx] = segments[oldIdx]
	}

	c := &Catalogue{
		domain:       d.Domain,
		segments:     sortedSegments,
		bitrateArray: sortedBitrates,
	}
	if n >= 2 {
		if ms, ok := c.segmentDurationMS(0, 1); ok {
			c.nominalLenMS = ms
		}
	}
	return c, nil
}

// NumQualities returns K, the number of rungs in the bitrate ladder.
func (c *Catalogue) NumQualities() int {
	return len(c.segments)
}

// SegmentCount returns N, the number of segments per quality.
func (c *Catalogue) SegmentCount() int {
	if len(c.segments) == 0 {
		return 0
	}
	return len(c.segments[0])
}

// BitrateArray returns the sorted-ascending kbps ladder. The slice is a
// private copy and safe to keep.
func (c *Catalogue) BitrateArray() []int {
	out := make([]int, len(c.bitrateArray))
	copy(out, c.bitrateArray)
	return out
}

// Info returns the VideoInfo for (quality, index), 1-based index per spec
// §3. It never panics (spec §7 UnknownSegmentIndex): an out-of-range
// quality is clamped to the nearest rung, and an out-of-range index
// reports ok=false.
func (c *Catalogue) Info(quality, index int) (VideoInfo, bool) {
	quality = clamp(quality, 0, len(c.segments)-1)
	if quality < 0 {
		return VideoInfo{}, false
	}
	n := len(c.segments[quality])
	if n == 0 {
		return VideoInfo{}, false
	}
	i := index - 1
	if i < 0 || i >= n {
		return VideoInfo{}, false
	}
	return c.segments[quality][i], true
}

// SegmentDurationMS returns SECOND*(start_time[index+1] - start_time[index])
// for a given quality and 1-based index, falling back to an earlier index
// when index+1 runs off the end of the ladder (spec §4.D.3's
// get_segment_length_sec). ok is false only when the quality has fewer than
// two segments.
func (c *Catalogue) SegmentDurationMS(quality, index int) (int, bool) {
	return c.segmentDurationMS(quality, index)
}

func (c *Catalogue) segmentDurationMS(quality, index int) (int, bool) {
	quality = clamp(quality, 0, len(c.segments)-1)
	if quality < 0 {
		return 0, false
	}
	info := c.segments[quality]
	n := len(info)
	if n < 2 {
		return 0, false
	}
	ref := index - 1
	if ref < 0 {
		ref = 0
	}
	for ref+1 >= n {
		ref--
		if ref < 0 {
			return 0, false
		}
	}
	ms := int(1000 * (info[ref+1].StartTime - info[ref].StartTime))
	return ms, true
}

// NominalSegmentLengthMS is the segment duration used to seed BB's
// "reuse the previous segment length" fallback before any real segment
// length has been computed (spec §9 open question).
func (c *Catalogue) NominalSegmentLengthMS() int {
	return c.nominalLenMS
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
