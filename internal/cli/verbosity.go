package cli

import (
	"errors"
	"fmt"

	"github.com/temirov/fln/internal/utils"
)

// ErrConflictingVerbosity reports that more than one of --quiet, --verbose and --debug was given.
var ErrConflictingVerbosity = errors.New("conflicting verbosity flags")

const conflictingVerbosityFormat = "%w: cannot use --%s and --%s together"

// resolveLogLevel maps the verbosity flags onto a log level. No flag yields an empty level so
// the configuration files decide.
func resolveLogLevel(quiet bool, verbose bool, debug bool) (string, error) {
	switch {
	case quiet && verbose:
		return "", fmt.Errorf(conflictingVerbosityFormat, ErrConflictingVerbosity, quietFlagName, verboseFlagName)
	case quiet && debug:
		return "", fmt.Errorf(conflictingVerbosityFormat, ErrConflictingVerbosity, quietFlagName, debugFlagName)
	case verbose && debug:
		return "", fmt.Errorf(conflictingVerbosityFormat, ErrConflictingVerbosity, verboseFlagName, debugFlagName)
	case quiet:
		return utils.LogLevelSilent, nil
	case debug:
		return utils.LogLevelDebug, nil
	case verbose:
		return utils.LogLevelVerbose, nil
	default:
		return "", nil
	}
}
