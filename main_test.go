// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callpath/ensemble/metrics"
)

func TestMetricColumn(t *testing.T) {
	tbl, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}},
		metrics.NewStringColumn("name", []string{"main"}),
		metrics.NewFloatColumn("samples/count", []float64{1}),
		metrics.NewFloatColumn("cpu/nanoseconds", []float64{100}))
	require.NoError(t, err)

	// Explicit name wins, string columns never qualify.
	c := metricColumn(tbl, "cpu/nanoseconds")
	require.NotNil(t, c)
	assert.Equal(t, "cpu/nanoseconds", c.Name)
	assert.Nil(t, metricColumn(tbl, "name"))
	assert.Nil(t, metricColumn(tbl, "no-such-column"))

	// Default is the first float column in table order.
	c = metricColumn(tbl, "")
	require.NotNil(t, c)
	assert.Equal(t, "samples/count", c.Name)

	onlyNames, err := metrics.New(
		[]metrics.Key{{Node: 0, Profile: 1}},
		metrics.NewStringColumn("name", []string{"main"}))
	require.NoError(t, err)
	assert.Nil(t, metricColumn(onlyNames, ""))
}
