// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookupMisses counts lookups that fell back to source text, for catalog
// completeness monitoring. A miss is never an error.
var lookupMisses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "msgforge_lookup_misses_total",
	Help: "Translation lookups resolved by source-text fallback.",
}, []string{"domain", "locale"})
