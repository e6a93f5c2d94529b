package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTargetString(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
		window string
	}{
		{
			name:   "index pane",
			target: Target{Session: "dev", Window: "0", Pane: "1"},
			want:   "dev:0.1",
			window: "dev:0",
		},
		{
			name:   "pane id",
			target: Target{Session: "dev", Window: "2", Pane: "%7"},
			want:   "%7",
			window: "dev:2",
		},
		{
			name:   "session with colon-free dashes",
			target: Target{Session: "my-work", Window: "10", Pane: "0"},
			want:   "my-work:10.0",
			window: "my-work:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.target.WindowTarget(); got != tt.window {
				t.Errorf("WindowTarget() = %q, want %q", got, tt.window)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    Target
		wantErr bool
	}{
		{input: "", want: Target{}},
		{input: "dev", want: Target{Session: "dev"}},
		{input: "dev:1", want: Target{Session: "dev", Window: "1"}},
		{input: "dev:1.2", want: Target{Session: "dev", Window: "1", Pane: "2"}},
		{input: "a:b:3.0", want: Target{Session: "a:b", Window: "3", Pane: "0"}},
		{input: "%3", want: Target{Pane: "%3"}},
		{input: ":1.0", wantErr: true},
		{input: "dev:", wantErr: true},
		{input: "dev:1.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTarget(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTargetMissing(t *testing.T) {
	target := Target{Session: "dev"}
	got := target.Missing("session", "window", "pane")
	if strings.Join(got, ",") != "window,pane" {
		t.Errorf("Missing() = %v, want [window pane]", got)
	}
	if got := (Target{Pane: "%5"}).MissingForPane(); len(got) != 0 {
		t.Errorf("MissingForPane() for a pane id = %v, want none", got)
	}
	if got := (Target{Session: "dev", Pane: "1"}).MissingForPane(); strings.Join(got, ",") != "window" {
		t.Errorf("MissingForPane() = %v, want [window]", got)
	}
	if !(Target{}).IsZero() {
		t.Error("zero Target should report IsZero")
	}
}

func TestServerInfoJSON(t *testing.T) {
	data, err := json.Marshal(ServerInfo{Running: true, SocketFile: "/tmp/tmux-1000/default"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"is_running":true`) {
		t.Errorf("expected is_running in %s", s)
	}
	if !strings.Contains(s, `"socket_file":"/tmp/tmux-1000/default"`) {
		t.Errorf("expected socket_file in %s", s)
	}
}
