package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/zoobzio/qualify"
)

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(input), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{"passthrough keeps member order", nil, `{"z":1,"a":[1.5,2]}`, "{\"z\":1,\"a\":[1.5,2]}\n"},
		{"wrapped", []string{"--wrapped", "data.user"}, `{"meta":{},"data":{"user":{"id":7}}}`, "{\"id\":7}\n"},
		{"wrapped lenient null", []string{"-w", "data.user", "--lenient"}, `{"data":null}`, "null\n"},
		{"element last", []string{"--element", "last"}, `[1,2,3]`, "3\n"},
		{"element index", []string{"-e", "1"}, `["a","b"]`, "\"b\"\n"},
		{"wrapped element", []string{"-w", "items", "-e", "first"}, `{"items":[{"x":true}]}`, "{\"x\":true}\n"},
		{"filter nulls", []string{"--filter-nulls"}, `[null,1,null,{"a":null}]`, "[1,{\"a\":null}]\n"},
		{"yaml to json", []string{"--from", "yaml", "--to", "json", "-w", "spec"}, "spec:\n  replicas: 3\n", "{\"replicas\":3}\n"},
		{"json to yaml", []string{"--to", "yaml"}, `{"a":[1]}`, "a:\n  - 1\n"},
		{"jsonc", []string{"--from", "jsonc", "--to", "json"}, "{\n// note\n\"a\": 1,\n}", "{\"a\":1}\n"},
		{"indent", []string{"--indent", "  "}, `{"a":1}`, "{\n  \"a\": 1\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.input, tt.args...)
			if err != nil {
				t.Fatalf("run() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_BinaryRoundTrip(t *testing.T) {
	for _, f := range []string{"msgpack", "cbor", "bson", "msgpack+zstd"} {
		t.Run(f, func(t *testing.T) {
			packed, err := runCLI(t, `{"user":{"id":1}}`, "--to", f)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := runCLI(t, packed, "--from", f, "--to", "json", "-w", "user")
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != "{\"id\":1}\n" {
				t.Errorf("run() = %q", got)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		usage bool
		is    error
	}{
		{"unknown format", []string{"--from", "toml"}, `{}`, true, nil},
		{"bad element", []string{"--element", "middle"}, `[]`, true, nil},
		{"empty segment", []string{"--wrapped", "a..b"}, `{}`, true, nil},
		{"lenient alone", []string{"--lenient"}, `{}`, true, nil},
		{"extra argument", []string{"file.json"}, `{}`, true, nil},
		{"unknown flag", []string{"--nope"}, `{}`, true, nil},
		{"not found", []string{"-w", "a.b"}, `{"a":{}}`, false, qualify.ErrPathNotFound},
		{"null at path", []string{"-w", "a.b"}, `{"a":null}`, false, qualify.ErrNullAtPath},
		{"mismatch", []string{"-e", "0"}, `{"a":1}`, false, qualify.ErrMismatch},
		{"trailing data", nil, `{} {}`, false, qualify.ErrUnmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.input, tt.args...)
			if err == nil {
				t.Fatal("run() should fail")
			}
			if got := errors.Is(err, errUsage); got != tt.usage {
				t.Errorf("errors.Is(err, errUsage) = %v for %v", got, err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("run() error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--help"}, strings.NewReader(""), &stdout, &stderr)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("run(--help) error = %v, want ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "--filter-nulls") {
		t.Errorf("usage output missing flags: %s", stderr.String())
	}
}
