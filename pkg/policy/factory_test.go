// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package policy

import (
	"errors"
	"testing"

	"github.com/Dash-Industry-Forum/abrcore/pkg/cc"
	"github.com/stretchr/testify/require"
)

func TestNewConstructsEveryKnownAlgorithm(t *testing.T) {
	cat := fourSecondLadder(t, 10)
	controller := cc.NewTestController()

	for _, selector := range []string{"random", "bb", "minerva", "target", "remote"} {
		p, err := New(selector, cat, controller)
		require.NoError(t, err, selector)
		require.NotNil(t, p, selector)
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	cat := fourSecondLadder(t, 10)
	controller := cc.NewTestController()

	p, err := New("quantum-leap", cat, controller)
	require.Nil(t, p)
	require.True(t, errors.Is(err, ErrUnknownAlgorithm))
}
