// Package usage counts CLI runs and decides when to show the sponsor message.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/fln/internal/utils"
)

const (
	usageFileName           = "usage.json"
	usageDirectoryMode      = 0o755
	usageFileMode           = 0o600
	noSponsorVariable       = "FLN_NO_SPONSOR"
	noSponsorEnabledValue   = "1"
	firstSponsorRunCount    = 5
	secondSponsorRunCount   = 25
	usageIndentationPattern = "\t"
)

// SponsorMessage is printed after a successful run when ShouldShowSponsor allows it.
const SponsorMessage = "💙 Support fln development: https://patreon.com/nesvet"

var continuousIntegrationVariables = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"BUILD_NUMBER",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
}

// Stats is the persisted usage record.
type Stats struct {
	RunCount int    `json:"runCount"`
	LastRun  string `json:"lastRun"`
}

// Tracker reads and writes usage.json inside Directory.
type Tracker struct {
	Directory string
	Now       func() time.Time
}

// NewTracker returns a Tracker rooted at the fln user configuration directory.
func NewTracker() (Tracker, error) {
	directory, err := utils.UserConfigDirectory()
	if err != nil {
		return Tracker{}, err
	}
	return Tracker{Directory: directory, Now: time.Now}, nil
}

// Increment bumps the run counter and returns the new count. A missing or unreadable
// record starts from zero.
func (tracker Tracker) Increment() (int, error) {
	stats := tracker.read()
	stats.RunCount++
	stats.LastRun = tracker.now().UTC().Format(time.RFC3339)
	if err := tracker.write(stats); err != nil {
		return stats.RunCount, err
	}
	return stats.RunCount, nil
}

func (tracker Tracker) read() Stats {
	content, err := os.ReadFile(tracker.path())
	if err != nil {
		return Stats{}
	}
	var stats Stats
	if err := json.Unmarshal(content, &stats); err != nil {
		return Stats{}
	}
	return stats
}

func (tracker Tracker) write(stats Stats) error {
	if err := os.MkdirAll(tracker.Directory, usageDirectoryMode); err != nil {
		return fmt.Errorf("create usage directory %s: %w", tracker.Directory, err)
	}
	content, err := json.MarshalIndent(stats, "", usageIndentationPattern)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	if err := os.WriteFile(tracker.path(), content, usageFileMode); err != nil {
		return fmt.Errorf("write usage %s: %w", tracker.path(), err)
	}
	return nil
}

func (tracker Tracker) path() string {
	return filepath.Join(tracker.Directory, usageFileName)
}

func (tracker Tracker) now() time.Time {
	if tracker.Now == nil {
		return time.Now()
	}
	return tracker.Now()
}

// IsSponsorRun reports whether runCount is one of the runs that show the sponsor message.
func IsSponsorRun(runCount int) bool {
	return runCount == firstSponsorRunCount || runCount == secondSponsorRunCount
}

// ShouldShowSponsor combines the run policy with the opt-outs: the flag, CI environments and FLN_NO_SPONSOR=1.
func ShouldShowSponsor(runCount int, disabledByFlag bool, lookupEnv func(string) (string, bool)) bool {
	if disabledByFlag || !IsSponsorRun(runCount) {
		return false
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if value, _ := lookupEnv(noSponsorVariable); value == noSponsorEnabledValue {
		return false
	}
	return !IsContinuousIntegration(lookupEnv)
}

// IsContinuousIntegration reports whether any well-known CI variable is set to a non-empty value.
func IsContinuousIntegration(lookupEnv func(string) (string, bool)) bool {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	for _, variable := range continuousIntegrationVariables {
		if value, present := lookupEnv(variable); present && value != "" {
			return true
		}
	}
	return false
}
