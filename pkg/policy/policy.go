// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package policy implements the pluggable quality-selection algorithms of
// spec §4.D: Random, BufferBased, Minerva, and the Target/Remote
// reward-search variants. Every variant satisfies Policy so the host loop
// (internal/session) stays agnostic to which one is active.
package policy

import "github.com/Dash-Industry-Forum/abrcore/pkg/schema"

// Policy is the capability set spec §9's design notes describe: a
// pluggable algorithm exposing RegisterMetrics, RegisterAbort, and Decide.
// Pipeline-backed variants (Random, BB, Target, Remote) delegate gating and
// memoisation to pkg/pipeline; Minerva does not use the pipeline at all —
// it always returns the no-op decision, driving the congestion controller
// instead of picking a per-segment quality (spec §4.D.3).
type Policy interface {
	RegisterAbort(index int)
	RegisterMetrics(m schema.Metrics)
	Decide() schema.Decision
}
