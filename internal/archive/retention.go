package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listSnapshots lists the timestamped snapshot files in dir, newest first.
// The timestamp comes from the file name, not the modification time, so
// copied or restored directories keep their history.
func listSnapshots(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("archive: read directory: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func parseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	ts, err := time.ParseInLocation(timeLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// applyRetention removes snapshots according to policy and returns the
// paths it removed.
func applyRetention(dir string, policy RetentionPolicy, now time.Time) ([]string, error) {
	snapshots, err := listSnapshots(dir)
	if err != nil {
		return nil, err
	}

	var hourly, daily, weekly, monthly []Info
	var toDelete []string

	for _, s := range snapshots {
		age := now.Sub(s.Timestamp)
		switch {
		case age < 24*time.Hour:
			hourly = append(hourly, s)
		case age < 7*24*time.Hour:
			daily = append(daily, s)
		case age < 30*24*time.Hour:
			weekly = append(weekly, s)
		case age < 365*24*time.Hour:
			monthly = append(monthly, s)
		default:
			toDelete = append(toDelete, s.Path)
		}
	}

	toDelete = append(toDelete, overflow(hourly, policy.Hourly)...)
	toDelete = append(toDelete, overflow(daily, policy.Daily)...)
	toDelete = append(toDelete, overflow(weekly, policy.Weekly)...)
	toDelete = append(toDelete, overflow(monthly, policy.Monthly)...)

	var removed []string
	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err
			continue
		}
		removed = append(removed, path)
	}
	if lastErr != nil {
		return removed, fmt.Errorf("archive: failed to delete some snapshots: %w", lastErr)
	}
	return removed, nil
}

// overflow returns the paths beyond the first keep entries of a tier.
func overflow(tier []Info, keep int) []string {
	if keep < 0 {
		keep = 0
	}
	if len(tier) <= keep {
		return nil
	}
	paths := make([]string, 0, len(tier)-keep)
	for _, s := range tier[keep:] {
		paths = append(paths, s.Path)
	}
	return paths
}
