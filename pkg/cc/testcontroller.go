// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cc

import (
	"sync"
	"time"
)

// TestController is an in-memory Controller used by tests, where there is
// no real QUIC congestion controller to couple with. It is safe for
// concurrent use.
type TestController struct {
	mu         sync.Mutex
	minRTT     time.Duration
	haveRTT    bool
	ackedBytes uint64
	linkWeight float64
}

// NewTestController returns a controller with no RTT known yet.
func NewTestController() *TestController {
	return &TestController{}
}

// SetMinRTT records an observed minimum RTT, making MinRTT report ok=true.
func (c *TestController) SetMinRTT(rtt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minRTT = rtt
	c.haveRTT = true
}

// AddAckedBytes accumulates bytes as if the transport had acknowledged them.
func (c *TestController) AddAckedBytes(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ackedBytes += n
}

func (c *TestController) MinRTT() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minRTT, c.haveRTT
}

func (c *TestController) AckedBytes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ackedBytes
}

func (c *TestController) ResetAckedBytes() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ackedBytes = 0
}

func (c *TestController) SetLinkWeight(weight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linkWeight = weight
}

// LinkWeight returns the most recently published link weight.
func (c *TestController) LinkWeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linkWeight
}
