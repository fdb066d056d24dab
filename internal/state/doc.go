// Package state shares scan status between the background scan and the UI.
//
// The scan goroutine writes through Begin, Advance and Finish; the UI reads a
// Snapshot on every tick. Snapshots are copies, so rendering never races
// with the writer:
//
//	Scan goroutine:                UI:
//	store.Begin(total)             snap := store.Snapshot()
//	store.Advance(gen, progress)   render progress bar
//	store.Finish(gen, res, err)    switch to chart on PhaseDone
//
// Every Begin starts a new generation. Writes tagged with an older
// generation are dropped, so a cancelled scan that is still unwinding cannot
// overwrite the status of its replacement.
//
// The zero Store is ready to use.
package state
