package bitstream

// TaskBoundary is one recovered sub-task: the 0-based index of its first
// body line and the number of body lines (sentinels excluded).
type TaskBoundary struct {
	StartLine int
	BodyLines int
}

// RecoverFixedSeparator walks a stream built from sub-task bodies each
// followed by exactly sepLen sentinel lines (the "original" S1 artifact).
// A task closes as soon as sepLen consecutive sentinels have been seen;
// any trailing sentinel run shorter than sepLen at end-of-file still closes
// the final open task once stripped.
func RecoverFixedSeparator(lines []string, sepLen int) []TaskBoundary {
	if sepLen <= 0 {
		sepLen = 5
	}
	var out []TaskBoundary
	n := len(lines)
	i := 0
	for i < n {
		for i < n && IsSentinel(lines[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		consecutive := 0
		closeAt := -1
		for i < n {
			if IsSentinel(lines[i]) {
				if consecutive == 0 {
					closeAt = i
				}
				consecutive++
				if consecutive == sepLen {
					i++
					break
				}
			} else {
				consecutive = 0
				closeAt = -1
			}
			i++
		}
		if consecutive == sepLen {
			out = append(out, TaskBoundary{StartLine: start, BodyLines: closeAt - start})
			continue
		}
		// End of file reached without a full separator run: close the
		// open task after stripping whatever trailing sentinels remain.
		bodyEnd := n
		if closeAt >= 0 {
			bodyEnd = closeAt
		}
		out = append(out, TaskBoundary{StartLine: start, BodyLines: bodyEnd - start})
	}
	return out
}

// RecoverVariableSeparator walks a stream where sub-task bodies are
// separated by runs of sentinels of any non-zero length (the "aligned" S1
// artifact, and the final stream fed to S2). Any run of one or more
// sentinels closes the current task and is skipped entirely before the next
// task starts.
func RecoverVariableSeparator(lines []string) []TaskBoundary {
	var out []TaskBoundary
	i := 0
	n := len(lines)
	for i < n {
		for i < n && IsSentinel(lines[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && !IsSentinel(lines[i]) {
			i++
		}
		out = append(out, TaskBoundary{StartLine: start, BodyLines: i - start})
	}
	return out
}
