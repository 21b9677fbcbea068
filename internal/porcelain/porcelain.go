// Package porcelain holds every text pattern this tool matches against
// git and git-annex output. The formats are not a stable interface; a
// backend upgrade that changes wording should only require edits here.
package porcelain

import (
	"regexp"
	"sort"
	"strings"
)

const alreadyInIndexSuffix = "' already exists in the index"

// gitMessagePrefixes are the severity prefixes git puts in front of
// die() and error() messages.
var gitMessagePrefixes = []string{"fatal: ", "error: "}

// AlreadyInIndex reports whether stderr from `git submodule add` says the
// target already exists in the index. Both the bare message and the
// "fatal: " / "error: " prefixed forms are recognized. The returned name
// keeps its quotes.
func AlreadyInIndex(stderr string) (string, bool) {
	for _, line := range strings.Split(stderr, "\n") {
		m := strings.TrimSpace(line)
		for _, prefix := range gitMessagePrefixes {
			m = strings.TrimPrefix(m, prefix)
		}
		if strings.HasPrefix(m, "'") && strings.HasSuffix(m, alreadyInIndexSuffix) {
			return m[:len(m)-len(alreadyInIndexSuffix)+1], true
		}
	}
	return "", false
}

var submodulePathRE = regexp.MustCompile(`Submodule path '(.+?)'`)

// UpdatedSubmodulePaths extracts the sub-paths reported by
// `git submodule update --init --recursive`, shortest first so that
// ancestors precede their descendants.
func UpdatedSubmodulePaths(stdout string) []string {
	seen := map[string]bool{}
	var paths []string
	for _, m := range submodulePathRE.FindAllStringSubmatch(stdout, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		paths = append(paths, m[1])
	}
	sort.SliceStable(paths, func(i, j int) bool { return len(paths[i]) < len(paths[j]) })
	return paths
}

// Gitmodule is one `submodule.<name>` section of .gitmodules.
type Gitmodule struct {
	Path string
	URL  string
}

// ParseGitmodules parses `git config -z --get-regexp ^submodule\.` output.
// Records are NUL-terminated, key and value separated by a newline.
func ParseGitmodules(out string) map[string]Gitmodule {
	modules := map[string]Gitmodule{}
	for _, rec := range SplitNull(out) {
		key, value, _ := strings.Cut(rec, "\n")
		if !strings.HasPrefix(key, "submodule.") {
			continue
		}
		rest := strings.TrimPrefix(key, "submodule.")
		dot := strings.LastIndex(rest, ".")
		if dot <= 0 {
			continue
		}
		name, field := rest[:dot], rest[dot+1:]
		mod := modules[name]
		switch field {
		case "path":
			mod.Path = value
		case "url":
			mod.URL = value
		default:
			continue
		}
		modules[name] = mod
	}
	for name, mod := range modules {
		if mod.Path == "" {
			mod.Path = name
			modules[name] = mod
		}
	}
	return modules
}

// ParseSubmoduleStatus maps each path listed by `git submodule status` to
// whether it is initialized. A leading '-' marks an uninitialized module.
// Lines read `<state><sha> <path>[ (<describe>)]`; the path may contain
// spaces.
func ParseSubmoduleStatus(out string) map[string]bool {
	status := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		initialized := line[0] != '-'
		_, path, ok := strings.Cut(strings.TrimLeft(line[1:], " "), " ")
		if !ok {
			continue
		}
		path = strings.TrimRight(path, " \r")
		if initialized {
			path = trimDescribe(path)
		}
		if path == "" {
			continue
		}
		status[path] = initialized
	}
	return status
}

// trimDescribe drops the ` (<describe>)` suffix git appends to checked-out
// submodules.
func trimDescribe(path string) string {
	if !strings.HasSuffix(path, ")") {
		return path
	}
	if i := strings.LastIndex(path, " ("); i >= 0 {
		return path[:i]
	}
	return path
}

// SplitNull splits NUL-separated output and drops empty records.
func SplitNull(out string) []string {
	var recs []string
	for _, rec := range strings.Split(out, "\x00") {
		if rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}

// FirstField returns the first whitespace-separated field of the first line.
func FirstField(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
