package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type StagingStorage interface {
	IsDir(path string) bool
	ListDir(path string) ([]string, error)
	ModTime(path string) (time.Time, error)
	Delete(path string) error
}

// SweepTarget is a directory whose direct entries are temporary.
type SweepTarget struct {
	Storage StagingStorage
	Dir     string
}

// StagingJanitor removes staging entries left behind by interrupted imports.
type StagingJanitor struct {
	targets  []SweepTarget
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewStagingJanitor(ttl, interval time.Duration, targets ...SweepTarget) *StagingJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &StagingJanitor{
		targets:  targets,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

func (s *StagingJanitor) Start(ctx context.Context) {
	if len(s.targets) == 0 {
		slog.Warn("staging janitor skipped: no storage configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *StagingJanitor) run(ctx context.Context) {
	if removed, err := s.Sweep(ctx); err != nil {
		slog.Error("staging sweep failed", "err", err)
	} else if removed > 0 {
		slog.Info("staging entries removed", "count", removed)
	}
}

// Sweep deletes every entry of the targets older than the TTL and returns
// how many were removed. A target directory that does not exist yet is
// skipped.
func (s *StagingJanitor) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for _, target := range s.targets {
		if !target.Storage.IsDir(target.Dir) {
			continue
		}
		n, err := s.sweepDir(ctx, target, cutoff)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (s *StagingJanitor) sweepDir(ctx context.Context, target SweepTarget, cutoff time.Time) (int, error) {
	entries, err := target.Storage.ListDir(target.Dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		modified, err := target.Storage.ModTime(entry)
		if err != nil {
			slog.Warn("staging entry disappeared", "path", entry, "err", err)
			continue
		}
		if modified.After(cutoff) {
			continue
		}
		if err := target.Storage.Delete(entry); err != nil {
			slog.Error("failed to remove staging entry", "path", entry, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}
