package modeller

import (
	"fmt"
	"strconv"
	"strings"
)

// priorityRank orders the closed set of priority spellings spec.md §8
// tests at the boundary: "idle" < "low" < "medium" < "high" < "rt1" ...
// "rt32". "rt0" and "rt33"+ are invalid and rank -1.
func priorityRank(p string) int {
	switch p {
	case "", "medium":
		return 2
	case "idle":
		return 0
	case "low":
		return 1
	case "high":
		return 3
	}
	if strings.HasPrefix(p, "rt") {
		n, err := strconv.Atoi(p[2:])
		if err != nil || n < 1 || n > 32 {
			return -1
		}
		return 3 + n
	}
	return -1
}

// ValidPriority reports whether p is one of the recognised priority
// spellings (spec.md §8 "Priority rt32: accepted; rt33 or rt0: rejected").
func ValidPriority(p string) bool { return priorityRank(p) >= 0 }

// ClampPriority returns startPriority, clamped to maxPriority when it
// exceeds it, and a flag reporting whether clamping occurred (spec.md
// Invariant 6: "never silently" — callers must warn when clamped is true).
func ClampPriority(startPriority, maxPriority string) (result string, clamped bool) {
	if maxPriority == "" {
		return startPriority, false
	}
	if priorityRank(startPriority) > priorityRank(maxPriority) {
		return maxPriority, true
	}
	return startPriority, false
}

func fmtPriorityWarning(start, max string) string {
	return fmt.Sprintf("startPriority %q exceeds maxPriority %q, clamping to %q", start, max, max)
}
