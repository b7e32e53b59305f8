// Package archive writes the build-time snapshot artifact (data.json) and
// keeps timestamped copies of every export under a tiered retention policy.
package archive

import "time"

// RetentionPolicy defines how many snapshots to keep at each tier.
// Snapshots are categorized by age:
// - Hourly: less than 24 hours old
// - Daily: between 1-7 days old
// - Weekly: between 7-30 days old
// - Monthly: between 30-365 days old
// Anything older than a year is always removed.
type RetentionPolicy struct {
	Hourly  int
	Daily   int
	Weekly  int
	Monthly int
}

// DefaultRetention keeps a day of hourly copies and a year of monthly ones.
var DefaultRetention = RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}

// Info describes one timestamped snapshot file.
type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

const (
	// ArtifactName is the file the site build reads.
	ArtifactName = "data.json"

	filePrefix = "snapshot-"
	fileSuffix = ".json"
	timeLayout = "20060102-150405.000000"
)

// FileName returns the timestamped file name for a snapshot taken at t.
func FileName(t time.Time) string {
	return filePrefix + t.UTC().Format(timeLayout) + fileSuffix
}
