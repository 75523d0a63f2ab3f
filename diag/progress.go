package diag

import (
	"sync/atomic"
)

// ProgressBar reports progress on long-running operations (scaffold
// clustering, bulk insertion) to stderr, gated by Verbose like everything
// else in this package.
type ProgressBar struct {
	Label   string
	Total   uint64
	Current uint64
}

func (bar *ProgressBar) Increment() {
	atomic.AddUint64(&bar.Current, 1)
}

func (bar *ProgressBar) ClearAndDisplay() {
	if bar.Total == 0 {
		return
	}
	Print("\r")
	barWidth := uint64(80 - len(bar.Label))
	ticks := (barWidth * bar.Current) / bar.Total
	Printf("%s [", bar.Label)
	for i := uint64(0); i < ticks; i++ {
		Print("=")
	}
	for i := uint64(0); i < (barWidth - ticks); i++ {
		Print(" ")
	}
	Print("] ")
	Printf("%d / %d", bar.Current, bar.Total)
}

func (bar *ProgressBar) Done() {
	bar.ClearAndDisplay()
	Print("\n")
}
