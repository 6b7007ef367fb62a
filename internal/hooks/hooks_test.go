// SPDX-License-Identifier: MPL-2.0

package hooks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		wantErr    bool
		wantExit   int
		wantStdout string
	}{
		{
			name:       "echo builtin",
			script:     `echo "hook ran"`,
			wantStdout: "hook ran\n",
		},
		{
			name:       "variable expansion",
			script:     `msg=pre; echo "$msg hook"`,
			wantStdout: "pre hook\n",
		},
		{
			name:   "empty script is a no-op",
			script: "   \n",
		},
		{
			name:     "non-zero exit",
			script:   "exit 3",
			wantErr:  true,
			wantExit: 3,
		},
		{
			name:    "syntax error",
			script:  "if then fi",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			r := NewRunner(&stdout, &stderr)

			err := r.Run(context.Background(), "pre-update", tt.script)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var hookErr *HookError
				if !errors.As(err, &hookErr) {
					t.Fatalf("error %v is not a *HookError", err)
				}
				if tt.wantExit != 0 && hookErr.ExitCode != tt.wantExit {
					t.Errorf("ExitCode = %d, want %d", hookErr.ExitCode, tt.wantExit)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
		})
	}
}

func TestRunner_ExtraEnv(t *testing.T) {
	var stdout bytes.Buffer
	r := NewRunner(&stdout, &stdout, "UPKEEP_DRY_RUN=1")

	if err := r.Run(context.Background(), "post-update", `echo "dry=$UPKEEP_DRY_RUN"`); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(stdout.String(), "dry=1") {
		t.Errorf("stdout = %q, extra env not visible to hook", stdout.String())
	}
}
