package engine

import (
	"fmt"
	"sort"
)

// attachReport converts the unresolved set into warnings ordered by
// application slug, plus one manual step per application whose catalog entry
// carries install notes. Applications without notes get only the warning;
// instructions are never fabricated.
func attachReport(snap *snapshot, res *resolution, warnings *[]string, steps *[]ManualStep) {
	slugs := make([]string, 0, len(res.unresolved))
	for slug := range res.unresolved {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		*warnings = append(*warnings, fmt.Sprintf("%s: %s", slug, res.unresolved[slug].message()))

		app, ok := snap.apps[slug]
		if !ok || app.InstallNotes == "" {
			continue
		}
		*steps = append(*steps, ManualStep{Application: slug, Instructions: app.InstallNotes})
	}
}
