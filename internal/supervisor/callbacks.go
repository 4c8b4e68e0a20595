package supervisor

import "time"

// MergeCallbacks fans events out to every non-nil hook in cbs, in order.
// Lets metrics, stats and caller hooks observe the same registry.
func MergeCallbacks(cbs ...Callbacks) Callbacks {
	return Callbacks{
		OnStart: func(rec RunRecord) {
			for _, cb := range cbs {
				if cb.OnStart != nil {
					cb.OnStart(rec)
				}
			}
		},
		OnExit: func(rec RunRecord, uptime time.Duration) {
			for _, cb := range cbs {
				if cb.OnExit != nil {
					cb.OnExit(rec, uptime)
				}
			}
		},
		OnStateChange: func(scriptID string, oldStatus, newStatus Status) {
			for _, cb := range cbs {
				if cb.OnStateChange != nil {
					cb.OnStateChange(scriptID, oldStatus, newStatus)
				}
			}
		},
		OnForceKill: func(scriptID string) {
			for _, cb := range cbs {
				if cb.OnForceKill != nil {
					cb.OnForceKill(scriptID)
				}
			}
		},
	}
}
