// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"fmt"

	"github.com/Dash-Industry-Forum/abrcore/pkg/catalogue"
	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
)

// New maps an algorithm selector string to a concrete Policy variant bound
// to cat and controller (spec §6 "Algorithm selector"). controller is
// ignored by variants that don't couple to CC (Random, BufferBased,
// Target).
func New(selector string, cat *catalogue.Catalogue, controller cc.Controller) (Policy, error) {
	switch selector {
	case "random":
		return NewRandom(cat), nil
	case "bb":
		return NewBB(cat), nil
	case "minerva":
		return NewMinerva(cat, controller), nil
	case "target":
		return NewTarget(cat), nil
	case "remote":
		return NewRemote(cat, controller), nil
	default:
		return nil, fmt.Errorf("policy: algorithm %q: %w", selector, ErrUnknownAlgorithm)
	}
}
