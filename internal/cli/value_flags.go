package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/fln/internal/types"
	"github.com/temirov/fln/internal/utils"
)

const (
	byteSizeFlagTypeName = "size"
	formatFlagTypeName   = "format"
	invalidFormatFormat  = "invalid format %q for --%s; accepted values: %s, %s"
)

// byteSizeValue parses human-readable sizes such as 512kb or 10mb into bytes.
type byteSizeValue struct {
	target *int64
	raw    string
}

func (value *byteSizeValue) Set(input string) error {
	parsed, err := utils.ParseByteSize(input)
	if err != nil {
		return err
	}
	*value.target = parsed
	value.raw = input
	return nil
}

func (value *byteSizeValue) String() string {
	return value.raw
}

func (value *byteSizeValue) Type() string {
	return byteSizeFlagTypeName
}

func registerByteSizeFlag(flagSet *pflag.FlagSet, target *int64, name string, usage string) {
	flagSet.Var(&byteSizeValue{target: target}, name, usage)
}

// formatValue accepts md or json in any letter case.
type formatValue struct {
	target  *string
	flagKey string
}

func (value *formatValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized != types.FormatMarkdown && normalized != types.FormatJSON {
		return fmt.Errorf(invalidFormatFormat, input, value.flagKey, types.FormatMarkdown, types.FormatJSON)
	}
	*value.target = normalized
	return nil
}

func (value *formatValue) String() string {
	if value.target == nil {
		return ""
	}
	return *value.target
}

func (value *formatValue) Type() string {
	return formatFlagTypeName
}

func registerFormatFlag(flagSet *pflag.FlagSet, target *string, name string, usage string) {
	flagSet.Var(&formatValue{target: target, flagKey: name}, name, usage)
}
