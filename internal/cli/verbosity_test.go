package cli

import (
	"errors"
	"testing"

	"github.com/temirov/fln/internal/utils"
)

func TestResolveLogLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		quiet         bool
		verbose       bool
		debug         bool
		expected      string
		expectFailure bool
	}{
		{name: "no flags defer to configuration", expected: ""},
		{name: "quiet", quiet: true, expected: utils.LogLevelSilent},
		{name: "verbose", verbose: true, expected: utils.LogLevelVerbose},
		{name: "debug", debug: true, expected: utils.LogLevelDebug},
		{name: "quiet and verbose", quiet: true, verbose: true, expectFailure: true},
		{name: "quiet and debug", quiet: true, debug: true, expectFailure: true},
		{name: "verbose and debug", verbose: true, debug: true, expectFailure: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			logLevel, err := resolveLogLevel(testCase.quiet, testCase.verbose, testCase.debug)
			if testCase.expectFailure {
				if !errors.Is(err, ErrConflictingVerbosity) {
					t.Fatalf("expected ErrConflictingVerbosity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logLevel != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, logLevel)
			}
		})
	}
}
