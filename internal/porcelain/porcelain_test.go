package porcelain

import (
	"reflect"
	"testing"
)

func TestAlreadyInIndex(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
		ok     bool
	}{
		{name: "bare message", stderr: "'data/raw' already exists in the index\n", want: "'data/raw'", ok: true},
		{name: "surrounding whitespace", stderr: "  'x' already exists in the index  ", want: "'x'", ok: true},
		{name: "fatal prefix", stderr: "fatal: 's' already exists in the index\n", want: "'s'", ok: true},
		{name: "error prefix", stderr: "error: 'with space' already exists in the index", want: "'with space'", ok: true},
		{name: "after hint lines", stderr: "hint: something\nfatal: 'ds' already exists in the index\n", want: "'ds'", ok: true},
		{name: "other failure", stderr: "fatal: repository 'x' does not exist", ok: false},
		{name: "empty", stderr: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AlreadyInIndex(tt.stderr)
			if ok != tt.ok {
				t.Fatalf("AlreadyInIndex(%q) ok = %v, want %v", tt.stderr, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("AlreadyInIndex(%q) = %q, want %q", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestUpdatedSubmodulePaths(t *testing.T) {
	out := "Submodule path 'a/deep/child': checked out 'abc'\n" +
		"Submodule path 'a': checked out 'def'\n" +
		"Submodule path 'a/b': checked out '123'\n" +
		"Submodule path 'a': checked out 'def'\n" +
		"unrelated line\n"

	got := UpdatedSubmodulePaths(out)
	want := []string{"a", "a/b", "a/deep/child"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UpdatedSubmodulePaths = %v, want %v", got, want)
	}
}

func TestUpdatedSubmodulePathsEmpty(t *testing.T) {
	if got := UpdatedSubmodulePaths(""); len(got) != 0 {
		t.Fatalf("expected no paths, got %v", got)
	}
}

func TestParseGitmodules(t *testing.T) {
	out := "submodule.raw.path\ndata/raw\x00" +
		"submodule.raw.url\nhttps://example.com/raw.git\x00" +
		"submodule.v1.0.path\nv1.0\x00" +
		"submodule.v1.0.url\n../v1\x00" +
		"submodule.nopath.url\n/srv/nopath\x00" +
		"submodule.raw.branch\nmain\x00"

	got := ParseGitmodules(out)
	want := map[string]Gitmodule{
		"raw":    {Path: "data/raw", URL: "https://example.com/raw.git"},
		"v1.0":   {Path: "v1.0", URL: "../v1"},
		"nopath": {Path: "nopath", URL: "/srv/nopath"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseGitmodules = %+v, want %+v", got, want)
	}
}

func TestParseSubmoduleStatus(t *testing.T) {
	out := " 1111111111111111111111111111111111111111 a (heads/main)\n" +
		"-2222222222222222222222222222222222222222 b\n" +
		"+3333333333333333333333333333333333333333 c/d (v1.0-1-g3333333)\n" +
		"\n"

	got := ParseSubmoduleStatus(out)
	want := map[string]bool{"a": true, "b": false, "c/d": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSubmoduleStatus = %v, want %v", got, want)
	}
}

func TestParseSubmoduleStatusPathsWithSpaces(t *testing.T) {
	out := " 1111111111111111111111111111111111111111 plain (heads/main)\n" +
		" 2222222222222222222222222222222222222222 with space (heads/main)\n" +
		"-3333333333333333333333333333333333333333 not yet (here)\n" +
		" 4444444444444444444444444444444444444444 no describe here\n"

	got := ParseSubmoduleStatus(out)
	want := map[string]bool{
		"plain":            true,
		"with space":       true,
		"not yet (here)":   false,
		"no describe here": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseSubmoduleStatus = %v, want %v", got, want)
	}
}

func TestSplitNullAndFirstField(t *testing.T) {
	if got := SplitNull("a\x00\x00b c\x00"); !reflect.DeepEqual(got, []string{"a", "b c"}) {
		t.Fatalf("SplitNull = %q", got)
	}
	if got := FirstField("SHA256E-s1--x file\nother"); got != "SHA256E-s1--x" {
		t.Fatalf("FirstField = %q", got)
	}
	if got := FirstField("\nsecond"); got != "" {
		t.Fatalf("FirstField of empty first line = %q", got)
	}
}
