package pipeline

import "fmt"

// ProgressObserver is told the cumulative number of records collected after
// every non-empty batch. It is called on the fetch goroutine and must return
// quickly; it has no way to influence pagination.
type ProgressObserver interface {
	OnProgress(collected int)
}

// ProgressFunc adapts a plain function to ProgressObserver
type ProgressFunc func(collected int)

func (f ProgressFunc) OnProgress(collected int) { f(collected) }

// MultiObserver fans one progress report out to several observers, in order.
type MultiObserver []ProgressObserver

func (m MultiObserver) OnProgress(collected int) {
	for _, o := range m {
		if o != nil {
			o.OnProgress(collected)
		}
	}
}

// LogProgress prints a progress line per batch
func LogProgress(label string) ProgressObserver {
	return ProgressFunc(func(collected int) {
		fmt.Printf("➡️ %s: %d records collected so far\n", label, collected)
	})
}

// noProgress is used when the caller passes no observer
type noProgress struct{}

func (noProgress) OnProgress(int) {}
