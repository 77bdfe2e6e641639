package ocr

import "sort"

// SortReadingOrder returns detections ordered top-to-bottom, then left-to-right.
// A detection joins the current line when its vertical centre falls inside the
// line's first region. The input slice is not modified.
func SortReadingOrder(detections []Detection) []Detection {
	if len(detections) < 2 {
		return detections
	}

	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return centerY(sorted[i]) < centerY(sorted[j])
	})

	out := make([]Detection, 0, len(sorted))
	lineStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && centerY(sorted[i]) < sorted[lineStart].Region.Max.Y {
			continue
		}
		line := sorted[lineStart:i]
		sort.SliceStable(line, func(a, b int) bool {
			return line[a].Region.Min.X < line[b].Region.Min.X
		})
		out = append(out, line...)
		lineStart = i
	}
	return out
}

func centerY(d Detection) int {
	return (d.Region.Min.Y + d.Region.Max.Y) / 2
}
