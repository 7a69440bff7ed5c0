package alphabet

import "log/slog"

// GrowthStep records one coverage measurement of the greedy builder.
type GrowthStep struct {
	Selected    int     // candidates selected so far
	Unalignable float64 // fraction of alignable pairs left without a path
}

// Grow selects candidates by descending frequency and measures coverage
// after every max(1, 1% of the remaining candidates) additions. It stops at
// the first measurement at or below threshold, or when every candidate is
// selected. The returned selection is in addition order.
func Grow[A, B comparable](c *Candidates[A, B], threshold float64, logger *slog.Logger) ([]int, []GrowthStep, error) {
	// 1. Validate
	if threshold < 0 || threshold > 1 {
		return nil, nil, ErrBadThreshold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if c.AlignableCount() == 0 {
		return nil, nil, nil
	}

	// 2. Add in frequency order, measuring at each checkpoint
	order := c.ByFrequency()
	selected := make([]bool, c.Len())
	var history []GrowthStep
	i := 0
	for i < len(order) {
		step := max(1, (len(order)-i)/100)
		for j := 0; j < step && i < len(order); j++ {
			selected[order[i]] = true
			i++
		}
		f := c.Unalignable(selected)
		history = append(history, GrowthStep{Selected: i, Unalignable: f})
		logger.Debug("alphabet growth", "selected", i, "candidates", len(order), "unalignable", f)
		if f <= threshold {
			break
		}
	}

	return order[:i:i], history, nil
}

// Shrink walks selection from its least frequent end and drops every
// candidate whose removal keeps the unalignable fraction at or below
// threshold. Selection order is preserved for the survivors.
func Shrink[A, B comparable](c *Candidates[A, B], selection []int, threshold float64, logger *slog.Logger) ([]int, error) {
	if threshold < 0 || threshold > 1 {
		return nil, ErrBadThreshold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	selected := make([]bool, c.Len())
	for _, code := range selection {
		selected[code] = true
	}
	if c.Unalignable(selected) > threshold {
		return selection, nil
	}

	removed := 0
	for k := len(selection) - 1; k >= 0; k-- {
		code := selection[k]
		selected[code] = false
		if c.Unalignable(selected) > threshold {
			selected[code] = true
			continue
		}
		removed++
	}

	out := make([]int, 0, len(selection)-removed)
	for _, code := range selection {
		if selected[code] {
			out = append(out, code)
		}
	}
	logger.Debug("alphabet shrink", "removed", removed, "kept", len(out))

	return out, nil
}
