// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package cc defines the congestion-control coupling boundary Minerva and
// its siblings drive (spec §4.E). Per spec §9's redesign note, there is no
// process-global singleton here: a Controller is constructed per session
// and injected into the policy that needs it, and the controller must
// outlive every policy instance that holds it.
package cc

import "time"

// Controller is the capability set a CC coupling policy needs. Calls
// happen only from the controller goroutine (spec §5).
type Controller interface {
	// MinRTT returns the current minimum observed RTT, or ok=false if it
	// is not yet known (spec §7 CCHookUnavailable).
	MinRTT() (rtt time.Duration, ok bool)
	// AckedBytes returns bytes acknowledged since the last ResetAckedBytes.
	AckedBytes() uint64
	// ResetAckedBytes zeroes the acked-byte counter.
	ResetAckedBytes()
	// SetLinkWeight publishes a link-weight hint to the congestion
	// controller.
	SetLinkWeight(weight float64)
}

// NoopController never reports an RTT and discards link-weight updates.
// It is the zero-value-safe default for algorithms that do not couple
// with congestion control, and a stand-in for "CC hook unavailable".
type NoopController struct{}

func (NoopController) MinRTT() (time.Duration, bool) { return 0, false }
func (NoopController) AckedBytes() uint64            { return 0 }
func (NoopController) ResetAckedBytes()              {}
func (NoopController) SetLinkWeight(float64)         {}
