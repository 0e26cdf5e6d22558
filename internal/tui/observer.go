package tui

import "github.com/mmcdole/cinelist/internal/collection"

// snapshotObserver keeps the latest engine snapshot for rendering.
// The engine notifies synchronously on the update loop, so no locking is needed.
type snapshotObserver struct {
	snap collection.Snapshot
}

// OnSnapshot implements collection.Observer
func (o *snapshotObserver) OnSnapshot(snap collection.Snapshot) {
	o.snap = snap
}
