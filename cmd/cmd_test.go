package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// resetSimulateFlags puts the simulate flags back to their defaults between
// runs of the shared root command.
func resetSimulateFlags(t *testing.T) {
	t.Helper()
	simulateCmd.Flags().VisitAll(func(f *pflag.Flag) {
		var err error
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(nil)
		} else {
			err = f.Value.Set(f.DefValue)
		}
		if err != nil {
			t.Fatalf("reset --%s: %v", f.Name, err)
		}
		f.Changed = false
	})
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		n     string
		args  []string
		want  string
		check func(t *testing.T, out string)
	}{
		{
			n:    "affirm",
			args: []string{"--name", "byte-me", "--members", "alice,bob"},
			want: "14 mutating calls",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "create_category") || !strings.Contains(out, "create_voice_channel") {
					t.Fatalf("missing provisioning calls:\n%s", out)
				}
			},
		},
		{
			n:    "decline",
			args: []string{"--name", "byte-me", "--members", "alice", "--answer", "decline"},
			want: "0 mutating calls",
		},
		{
			n:    "taken",
			args: []string{"--name", "general", "--members", "alice", "--taken", "general"},
			want: "0 mutating calls",
			check: func(t *testing.T, out string) {
				if strings.Contains(out, "react") {
					t.Fatalf("confirmation asked for a taken name:\n%s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			resetSimulateFlags(t)

			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(append([]string{"simulate", "--log-level", "panic"}, tt.args...))

			if err := Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("output does not contain %q:\n%s", tt.want, out.String())
			}
			if tt.check != nil {
				tt.check(t, out.String())
			}
		})
	}
}

func TestSimulate_BadAnswer(t *testing.T) {
	resetSimulateFlags(t)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"simulate", "--name", "x", "--members", "alice", "--answer", "maybe"})

	if err := Execute(); err == nil {
		t.Fatal("expected an error for an unknown answer")
	}
}
