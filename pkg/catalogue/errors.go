// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package catalogue

import "errors"

var (
	// ErrEmptyCatalogue is returned by New when no video resource matched.
	ErrEmptyCatalogue = errors.New("catalogue has no video resources")
	// ErrInconsistentLadder is returned by New when qualities carry a
	// different number of segments.
	ErrInconsistentLadder = errors.New("catalogue qualities have inconsistent segment counts")
)
