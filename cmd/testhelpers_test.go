package cmd

import (
	"bytes"
	"strings"
	"testing"
)

// containsAll returns true if all substrings in subs are present in s.
func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// runRoot executes the root command with args and returns its stdout.
// Cobra keeps flag values between runs, so the help flag of the command that
// ran is cleared afterwards along with the args.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetArgs([]string{})
	if c, _, findErr := rootCmd.Find(args); findErr == nil {
		if f := c.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
	return buf.String(), err
}
