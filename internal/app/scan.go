package app

import (
	"context"
	"log"

	"github.com/five82/logdog/internal/session"
	"github.com/five82/logdog/internal/state"
)

// StartScan plans a run from sess and launches it in a background goroutine
// that reports into store. Planning errors are returned before anything
// starts. The returned cancel stops the scan between files.
func StartScan(ctx context.Context, store *state.Store, sess *session.Controller) (context.CancelFunc, error) {
	plan, err := sess.Plan(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	gen := store.Begin(plan.FilesTotal)
	log.Printf("scan %d started: %d folders, %d files, phrases %s", gen, len(plan.Entries), plan.FilesTotal, plan.Matcher)

	go func() {
		defer cancel()
		res, err := sess.Run(runCtx, plan, func(p session.Progress) {
			store.Advance(gen, p)
		})
		if err != nil {
			log.Printf("scan %d stopped: %v", gen, err)
		} else {
			log.Printf("scan %d finished: %d matches in %s", gen, res.Collection.Matches(), res.Elapsed)
		}
		store.Finish(gen, res, err)
	}()
	return cancel, nil
}
