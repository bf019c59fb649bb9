package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by commands that print structured data
var outputFormats = []string{"table", "json", "yaml"}

// addOutputFlag registers -o/--output on cmd, restricted to formats.
func addOutputFlag(cmd *cobra.Command, target *string, def string, formats []string) {
	cmd.Flags().StringVarP(target, "output", "o", def,
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	AddFlagValidation(cmd, "output", func(value string) error {
		return ValidateFormat(value, formats)
	})
}

// bindConfigFlags binds the named flags of cmd to config keys so a changed
// flag overrides the file and environment and goes through the same
// validation. Binding happens at run time because several commands share a
// key.
func bindConfigFlags(cmd *cobra.Command, keys map[string]string) error {
	for flagName, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			return fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormat checks format against the supported values and suggests the
// closest one when it is a likely typo.
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}

	msg := fmt.Sprintf("unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
	if suggestion := closest(format, supported); suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", suggestion)
	}
	return fmt.Errorf("%s", msg)
}

// closest returns the candidate within edit distance 2 of s, if any.
func closest(s string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein(strings.ToLower(s), c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(b)]
}
