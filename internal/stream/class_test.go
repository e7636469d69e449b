package stream

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestClassValues(t *testing.T) {
	tests := []struct {
		class Class
		want  uint8
	}{
		{None, 0},
		{Output, 1},
		{Verbose, 2},
		{Warning, 4},
		{Error, 8},
		{Debug, 16},
		{All, 31},
	}

	for _, tt := range tests {
		if uint8(tt.class) != tt.want {
			t.Errorf("%s = %d, want %d", tt.class, uint8(tt.class), tt.want)
		}
	}
}

func TestClassHas(t *testing.T) {
	mask := Output | Error

	if !mask.Has(Output) {
		t.Error("mask should contain Output")
	}
	if !mask.Has(Error) {
		t.Error("mask should contain Error")
	}
	if mask.Has(Warning) {
		t.Error("mask should not contain Warning")
	}
	if mask.Has(Output | Warning) {
		t.Error("Has should require every requested category")
	}
	if !mask.Has(None) {
		t.Error("every mask contains None")
	}
	if !All.Has(Debug | Verbose) {
		t.Error("All should contain every category")
	}
}

func TestClassSingle(t *testing.T) {
	for _, c := range Classes() {
		if !c.Single() {
			t.Errorf("%v.Single() = false", c)
		}
	}
	for _, c := range []Class{None, All, Output | Error, Class(0x40)} {
		if c.Single() {
			t.Errorf("%v.Single() = true", c)
		}
	}
}

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{None, "none"},
		{All, "all"},
		{Output, "output"},
		{Output | Error, "output|error"},
		{Warning | Debug, "warning|debug"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.class.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Class
		wantErr bool
	}{
		{name: "single", input: "error", want: Error},
		{name: "comma list", input: "output,error", want: Output | Error},
		{name: "pipe list", input: "warning|verbose", want: Warning | Verbose},
		{name: "case insensitive", input: "Output, DEBUG", want: Output | Debug},
		{name: "plural spelling", input: "errors,warnings", want: Error | Warning},
		{name: "all", input: "all", want: All},
		{name: "none", input: "none", want: None},
		{name: "round trip of String", input: (Output | Error).String(), want: Output | Error},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "output,stdout", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassesOrder(t *testing.T) {
	got := Classes()
	want := []Class{Output, Verbose, Warning, Error, Debug}
	if len(got) != len(want) {
		t.Fatalf("Classes() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClassAsFlag(t *testing.T) {
	c := All
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(&c, "streams", "s", "streams to capture")

	if err := fs.Parse([]string{"--streams", "error,warning"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c != Error|Warning {
		t.Errorf("flag value = %v, want error|warning", c)
	}

	if err := fs.Parse([]string{"-s", "bogus"}); err == nil {
		t.Error("expected error for unknown stream name")
	}
}

func TestClassText(t *testing.T) {
	var c Class
	if err := c.UnmarshalText([]byte("debug,verbose")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	text, err := c.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "verbose|debug" {
		t.Errorf("MarshalText = %q, want %q", text, "verbose|debug")
	}
}
