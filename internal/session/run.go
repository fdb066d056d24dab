package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/five82/logdog/internal/match"
	"github.com/five82/logdog/internal/series"
	"github.com/five82/logdog/internal/walker"
)

// Plan is an immutable snapshot of the inputs for one run.
type Plan struct {
	Entries []Entry

	// Files holds the regular file count per entry; FilesTotal is their sum.
	Files      []int
	FilesTotal int

	Matcher *match.Matcher
	Mode    series.Mode
	Walk    walker.Options
}

// Progress is reported after every file.
type Progress struct {
	FilesDone  int
	FilesTotal int
	Folder     string
	File       string
	Status     walker.Status
	Matches    int
}

// FolderResult summarises one entry after a run.
type FolderResult struct {
	Entry   Entry
	Files   int
	Matches int
	Failed  int
	Err     error
}

// Result is the outcome of Run.
type Result struct {
	Collection *series.Collection
	Folders    []FolderResult
	FilesDone  int
	Matcher    *match.Matcher
	Started    time.Time
	Elapsed    time.Duration
}

// Plan validates the controller and counts files up front so progress can
// be scaled. Unreadable folders count as zero files; Run reports them.
func (c *Controller) Plan(ctx context.Context) (Plan, error) {
	if err := c.Validate(); err != nil {
		return Plan{}, err
	}
	m, err := match.New(c.phrases, c.opts.CaseInsensitive)
	if err != nil {
		return Plan{}, err
	}

	p := Plan{
		Entries: c.Entries(),
		Matcher: m,
		Mode:    c.opts.Mode,
		Walk:    c.opts.Walk,
	}
	p.Files = make([]int, len(p.Entries))
	for i, e := range p.Entries {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		n, err := walker.CountFiles(e.Path)
		if err != nil {
			log.Printf("plan: %v", err)
			continue
		}
		p.Files[i] = n
		p.FilesTotal += n
	}
	return p, nil
}

// Run scans every entry of plan in order and builds one series per entry
// with at least one match. onProgress may be nil. A cancelled ctx stops the
// run between files and returns the partial result with ctx's error.
func (c *Controller) Run(ctx context.Context, plan Plan, onProgress func(Progress)) (*Result, error) {
	res := &Result{Matcher: plan.Matcher, Started: time.Now()}
	var list []*series.Series
	finish := func() {
		res.Collection = series.NewCollection(plan.Mode, list...)
		res.Elapsed = time.Since(res.Started)
	}

	for _, e := range plan.Entries {
		log.Printf("processing folder: %s", e.Path)
		fr := FolderResult{Entry: e}
		matches, err := walker.Walk(ctx, e.Path, plan.Matcher, plan.Walk, func(r walker.FileReport) {
			res.FilesDone++
			fr.Files++
			if r.Status == walker.StatusFailed || r.Status == walker.StatusMissing {
				fr.Failed++
			}
			if onProgress != nil {
				onProgress(Progress{
					FilesDone:  res.FilesDone,
					FilesTotal: plan.FilesTotal,
					Folder:     e.Path,
					File:       r.Path,
					Status:     r.Status,
					Matches:    r.Matches,
				})
			}
		})
		fr.Matches = len(matches)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				res.Folders = append(res.Folders, fr)
				finish()
				return res, err
			}
			log.Printf("skipping folder %s: %v", e.Path, err)
			fr.Err = err
		}
		res.Folders = append(res.Folders, fr)

		if len(matches) == 0 {
			log.Printf("no matches found in folder: %s", e.Path)
			continue
		}
		list = append(list, series.FromMatches(e.Label, e.Color, matches, plan.Mode))
	}
	finish()
	return res, nil
}
