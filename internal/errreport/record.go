// Package errreport is the terminal sink for "should this be shown to a
// human" decisions. Any layer hands it a raw error or message string; it
// normalizes the input into a Record, suppresses known-benign categories,
// and then logs and displays what remains. Handle never panics and never
// returns an error.
package errreport

import "time"

// Level is the visibility of a classified error.
type Level string

// Visibility levels, lowest to highest.
const (
	LevelSilent   Level = "silent"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Source identifies the layer that produced the error.
type Source string

// Known sources.
const (
	SourceAPI     Source = "api"
	SourceAuth    Source = "auth"
	SourceUI      Source = "ui"
	SourceStorage Source = "storage"
	SourceNetwork Source = "network"
	SourceForm    Source = "form"
	SourceUnknown Source = "unknown"
)

// Record is one classified error. Records are transient: created, logged,
// displayed, and discarded — never persisted.
type Record struct {
	Message        string
	Level          Level
	Source         Source
	Timestamp      time.Time
	Context        map[string]any
	NavigationPath string

	// Suppressed marks a record whose effective level was forced to silent
	// by the benign-category rules, letting callers branch on the state
	// without user-facing noise.
	Suppressed bool
}
