package logger

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks a zerr chain. Levels without a message only carry
// metadata, which is folded into the next level. The first non-zerr error
// ends the walk.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for current := err; current != nil; {
		z, ok := current.(*zerr.Error)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		meta := z.Metadata()
		if z.Message() == "" {
			if pending == nil {
				pending = make(map[string]any, len(meta))
			}
			maps.Copy(pending, meta)
			current = z.Unwrap()
			continue
		}

		if pending != nil {
			maps.Copy(meta, pending)
			pending = nil
		}
		entries = append(entries, ErrorEntry{Message: z.Message(), Metadata: meta})
		current = z.Unwrap()
	}
	return entries
}

// formatErrorEntries renders entries as
//
//	Error: outer
//	       key: value
//
//	  Caused by:
//	    → inner
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")
		prefix, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			prefix, indent = "    → ", "      "
		}

		lines = append(lines, prefix+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}
	return strings.Join(lines, "\n")
}

func mergedMetadata(entries []ErrorEntry) map[string]any {
	var merged map[string]any
	for i := len(entries) - 1; i >= 0; i-- {
		if len(entries[i].Metadata) == 0 {
			continue
		}
		if merged == nil {
			merged = make(map[string]any)
		}
		maps.Copy(merged, entries[i].Metadata)
	}
	return merged
}
