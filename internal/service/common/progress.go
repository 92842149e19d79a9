package common

// ProgressSink receives fire-and-forget progress notifications at pipeline
// checkpoints. Implementations must not block; the pipeline never consumes a
// return value and behaves identically when no sink is supplied.
type ProgressSink interface {
	Notify(label string, fraction float64)
}

// NotifyProgress reports progress to sink if one is present.
func NotifyProgress(sink ProgressSink, label string, fraction float64) {
	if sink == nil {
		return
	}
	sink.Notify(label, fraction)
}
