package document

// ResolveText returns the substring of text covered by anchor.
//
// The result runs from the first segment's start to the last segment's end, so
// bytes lying between disjoint segments are included. A nil anchor or one
// without segments resolves to "". Offsets are clamped to the buffer and an
// inverted range resolves to "".
func ResolveText(text string, anchor *TextAnchor) string {
	if anchor == nil || len(anchor.Segments) == 0 {
		return ""
	}

	start := clamp(anchor.Segments[0].StartIndex, len(text))
	end := clamp(anchor.Segments[len(anchor.Segments)-1].EndIndex, len(text))
	if end <= start {
		return ""
	}
	return text[start:end]
}

func clamp(idx int64, n int) int {
	if idx < 0 {
		return 0
	}
	if idx > int64(n) {
		return n
	}
	return int(idx)
}
