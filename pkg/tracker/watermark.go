package tracker

// Watermarks holds the running extrema of a session.
type Watermarks struct {
	High uint8
	Low  uint8
}

// Start captures the first sample of a session.
func (w *Watermarks) Start(sample uint8) {
	w.High, w.Low = sample, sample
}

// Observe folds a sample into the running extrema.
func (w *Watermarks) Observe(sample uint8) {
	if sample > w.High {
		w.High = sample
	}
	if sample < w.Low {
		w.Low = sample
	}
}

// Spread returns High - Low. It wraps modulo 256, which can't happen
// for watermarks built with Start/Observe.
func (w Watermarks) Spread() uint8 {
	return w.High - w.Low
}
