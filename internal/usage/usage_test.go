package usage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/temirov/fln/internal/usage"
)

func fixedClock() time.Time {
	return time.Date(2026, time.February, 8, 12, 0, 0, 0, time.UTC)
}

func TestTrackerIncrementPersistsCount(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "fln")
	tracker := usage.Tracker{Directory: directory, Now: fixedClock}

	for expected := 1; expected <= 3; expected++ {
		runCount, err := tracker.Increment()
		if err != nil {
			t.Fatalf("Increment error: %v", err)
		}
		if runCount != expected {
			t.Fatalf("expected run %d, got %d", expected, runCount)
		}
	}

	content, err := os.ReadFile(filepath.Join(directory, "usage.json"))
	if err != nil {
		t.Fatalf("read usage: %v", err)
	}
	var stats usage.Stats
	if err := json.Unmarshal(content, &stats); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if stats.RunCount != 3 || stats.LastRun != "2026-02-08T12:00:00Z" {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestTrackerRecoversFromCorruptRecord(t *testing.T) {
	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "usage.json"), []byte("not json"), 0o600); err != nil {
		t.Fatalf("seed usage: %v", err)
	}
	runCount, err := usage.Tracker{Directory: directory, Now: fixedClock}.Increment()
	if err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if runCount != 1 {
		t.Fatalf("expected a fresh count, got %d", runCount)
	}
}

func TestNewTrackerUsesConfigDirectory(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	tracker, err := usage.NewTracker()
	if err != nil {
		t.Fatalf("NewTracker error: %v", err)
	}
	if tracker.Directory != filepath.Join(configHome, "fln") {
		t.Fatalf("unexpected directory %s", tracker.Directory)
	}
}

func environment(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, present := values[key]
		return value, present
	}
}

func TestShouldShowSponsor(t *testing.T) {
	testCases := []struct {
		name           string
		runCount       int
		disabledByFlag bool
		environment    map[string]string
		expected       bool
	}{
		{name: "fifth run", runCount: 5, expected: true},
		{name: "twenty fifth run", runCount: 25, expected: true},
		{name: "other run", runCount: 6, expected: false},
		{name: "flag", runCount: 5, disabledByFlag: true, expected: false},
		{name: "ci", runCount: 5, environment: map[string]string{"GITHUB_ACTIONS": "true"}, expected: false},
		{name: "empty ci variable", runCount: 5, environment: map[string]string{"CI": ""}, expected: true},
		{name: "opt out", runCount: 25, environment: map[string]string{"FLN_NO_SPONSOR": "1"}, expected: false},
		{name: "opt out needs one", runCount: 25, environment: map[string]string{"FLN_NO_SPONSOR": "yes"}, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := usage.ShouldShowSponsor(testCase.runCount, testCase.disabledByFlag, environment(testCase.environment))
			if result != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, result)
			}
		})
	}
}
