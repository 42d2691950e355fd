package main

import (
	"context"
	"fmt"
	"io"
	randv2 "math/rand/v2"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	antsv2 "github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xllrb/lib/tree"
	"github.com/benz9527/xllrb/xlog"
)

type treeReport struct {
	index    int
	inserts  int64
	updates  int64
	deletes  int64
	misses   int64
	checks   int64
	size     int64
	elapsed  time.Duration
	err      error
	finished bool
}

type stressReport struct {
	trees   []*treeReport
	elapsed time.Duration
}

func (r *stressReport) Err() error {
	var err error
	for _, t := range r.trees {
		err = multierr.Append(err, t.err)
	}
	return err
}

type stressRunner struct {
	profile *StressProfile
	pool    *antsv2.Pool
	logger  xlog.XLogger
}

func newStressRunner(profile *StressProfile, pool *antsv2.Pool, logger xlog.XLogger) *stressRunner {
	return &stressRunner{
		profile: profile,
		pool:    pool,
		logger:  logger.Named("stress"),
	}
}

// Run submits one task per tree and waits for all of them. A failed
// submission or a cancelled context leaves the tree unfinished.
func (r *stressRunner) Run(ctx context.Context) (*stressReport, error) {
	report := &stressReport{
		trees: make([]*treeReport, r.profile.Trees),
	}
	start := time.Now()
	wg := sync.WaitGroup{}
	var submitErr error
	for i := 0; i < r.profile.Trees; i++ {
		tr := &treeReport{index: i}
		report.trees[i] = tr
		wg.Add(1)
		if err := r.pool.Submit(func() {
			defer wg.Done()
			r.runTree(ctx, tr)
		}); err != nil {
			wg.Done()
			tr.err = fmt.Errorf("tree %d: %w", i, err)
			submitErr = multierr.Append(submitErr, err)
		}
	}
	wg.Wait()
	report.elapsed = time.Since(start)
	return report, submitErr
}

func (r *stressRunner) runTree(ctx context.Context, tr *treeReport) {
	start := time.Now()
	defer func() {
		tr.elapsed = time.Since(start)
		if rec := recover(); rec != nil {
			r.logger.Violation(rec, "stress tree panicked", zap.Int("tree", tr.index))
			tr.err = multierr.Append(tr.err, fmt.Errorf("tree %d: panic: %v", tr.index, rec))
		}
	}()

	opts := []tree.LLRBTreeOption[int64, int64]{
		tree.WithLLRBTreeStats[int64, int64](fmt.Sprintf("stress-%d", tr.index)),
	}
	if r.profile.Desc {
		opts = append(opts, tree.WithLLRBTreeDesc[int64, int64]())
	}
	t := tree.NewLLRBTree[int64, int64](opts...)
	defer t.Release()

	rng := randv2.New(randv2.NewPCG(r.profile.Seed, uint64(tr.index)))
	expected := make(map[int64]int64, r.profile.KeySpace)
	for op := 1; op <= r.profile.Operations; op++ {
		if op%256 == 0 && ctx.Err() != nil {
			tr.err = fmt.Errorf("tree %d: %w", tr.index, ctx.Err())
			return
		}
		key := rng.Int64N(r.profile.KeySpace)
		if rng.Float64() < r.profile.DeleteRatio {
			_, ok := expected[key]
			if removed := t.Delete(key); removed != ok {
				tr.err = fmt.Errorf("tree %d: delete %d reported %v, expected %v", tr.index, key, removed, ok)
				return
			}
			if ok {
				delete(expected, key)
				tr.deletes++
			} else {
				tr.misses++
			}
		} else {
			val := rng.Int64()
			if _, ok := expected[key]; ok {
				tr.updates++
			} else {
				tr.inserts++
			}
			t.Insert(key, val)
			expected[key] = val
		}
		if r.profile.CheckEvery > 0 && op%r.profile.CheckEvery == 0 {
			tr.checks++
			if err := tree.Check[int64, int64](t); err != nil {
				tr.err = fmt.Errorf("tree %d after %d operations: %w", tr.index, op, err)
				return
			}
		}
	}

	tr.checks++
	tr.err = multierr.Combine(tree.Check[int64, int64](t), verifyContents(t, expected))
	if tr.err != nil {
		tr.err = fmt.Errorf("tree %d: %w", tr.index, tr.err)
		return
	}
	tr.size = t.Len()
	tr.finished = true
	r.logger.Debug("stress tree done",
		zap.Int("tree", tr.index),
		zap.Int64("size", tr.size),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func verifyContents(t tree.LLRBTree[int64, int64], expected map[int64]int64) error {
	if t.Len() != int64(len(expected)) {
		return fmt.Errorf("size %d, expected %d", t.Len(), len(expected))
	}
	for key, want := range expected {
		got, ok := t.Get(key)
		if !ok || got != want {
			return fmt.Errorf("key %d holds (%d, %v), expected %d", key, got, ok, want)
		}
	}
	return nil
}

func renderStressReport(w io.Writer, profile *StressProfile, report *stressReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(fmt.Sprintf("LLRB stress: %d trees x %d operations, seed %d",
		profile.Trees, profile.Operations, profile.Seed))
	tw.AppendHeader(table.Row{"Tree", "Inserts", "Updates", "Deletes", "Misses", "Checks", "Size", "Elapsed", "Status"})
	var inserts, updates, deletes, misses, checks, size int64
	failed := 0
	for _, t := range report.trees {
		status := "ok"
		if t.err != nil {
			status = t.err.Error()
			failed++
		} else if !t.finished {
			status = "not run"
			failed++
		}
		tw.AppendRow(table.Row{t.index, t.inserts, t.updates, t.deletes, t.misses, t.checks, t.size, t.elapsed.Round(time.Microsecond), status})
		inserts += t.inserts
		updates += t.updates
		deletes += t.deletes
		misses += t.misses
		checks += t.checks
		size += t.size
	}
	tw.AppendFooter(table.Row{"Total", inserts, updates, deletes, misses, checks, size, report.elapsed.Round(time.Microsecond),
		fmt.Sprintf("%d failed", failed)})
	tw.Render()
}
