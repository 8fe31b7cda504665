// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package merge

import "codeberg.org/msgforge/msgforge/catalog"

// Prune removes obsolete entries that have survived at least minAge
// consecutive merges, returning how many were dropped. minAge <= 0 removes
// every obsolete entry. Pruning is the only operation that destroys
// entries; merges never do.
func Prune(c *catalog.Catalog, minAge int) int {
	kept := c.Entries[:0]
	removed := 0

	for _, e := range c.Entries {
		if e.Obsolete && (minAge <= 0 || e.ObsoleteAge() >= minAge) {
			removed++

			continue
		}

		kept = append(kept, e)
	}

	c.Entries = kept

	return removed
}
