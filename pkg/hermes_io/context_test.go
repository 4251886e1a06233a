package hermes_io

import (
	"context"
	"testing"
)

func TestNewContext(t *testing.T) {
	rc := NewContext(context.Background(), "test-command")
	if rc.Ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if rc.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	if rc.Command != "test-command" {
		t.Errorf("expected command test-command, got %s", rc.Command)
	}
	if rc.Attributes == nil {
		t.Error("expected attributes map to be initialized")
	}
}

func TestNewContextNilParent(t *testing.T) {
	rc := NewContext(nil, "orphan")
	if rc.Ctx == nil {
		t.Fatal("expected context to be defaulted")
	}
}

func TestRedactArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no_secrets",
			args: []string{"export", "--output", "creds.tar.gz"},
			want: []string{"export", "--output", "creds.tar.gz"},
		},
		{
			name: "password_flag_with_value",
			args: []string{"verify", "--host", "1.2.3.4", "--password", "hunter2"},
			want: []string{"verify", "--host", "1.2.3.4", "--password", "[REDACTED]"},
		},
		{
			name: "password_equals_form",
			args: []string{"verify", "--password=hunter2"},
			want: []string{"verify", "--password=[REDACTED]"},
		},
		{
			name: "short_flag",
			args: []string{"-p", "hunter2"},
			want: []string{"-p", "[REDACTED]"},
		},
		{
			name: "trailing_flag_without_value",
			args: []string{"verify", "--password"},
			want: []string{"verify", "--password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactArgs(tt.args)
			if len(got) != len(tt.want) {
				t.Fatalf("length mismatch: got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRedactArgsDoesNotMutateInput(t *testing.T) {
	args := []string{"--password", "secret"}
	RedactArgs(args)
	if args[1] != "secret" {
		t.Error("input slice was mutated")
	}
}

func TestHandlePanic(t *testing.T) {
	rc := NewContext(context.Background(), "panicky")
	var err error
	func() {
		defer rc.HandlePanic(&err)
		panic("boom")
	}()
	if err == nil {
		t.Fatal("expected panic to be converted to error")
	}
}
