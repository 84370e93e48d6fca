// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// minSimilarity is the lowest similarity worth suggesting.
const minSimilarity = 0.6

// suggest returns the candidate most similar to name, or "" if none
// is similar enough.
func suggest(name string, candidates []string) string {
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	best, score := "", minSimilarity
	for _, c := range candidates {
		if s := strutil.Similarity(name, c, jw); s >= score {
			best, score = c, s
		}
	}
	return best
}
