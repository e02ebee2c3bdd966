// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import "errors"

// ErrUnknownAlgorithm is returned by New for an unrecognised selector
// string (spec §6 "Algorithm selector").
var ErrUnknownAlgorithm = errors.New("policy: unknown algorithm")
