// Package env implements the environment-variable substitution and
// path-search utilities described in spec.md §4.1. Every definition-file
// token that can contain a "$VAR" or "${VAR}" reference is expanded
// through DoSubstitution, and every #include/search-directory lookup goes
// through FindFile/FindDir so behaviour stays centralized and testable.
package env

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	mkerrors "github.com/legato-af/mktools/internal/errors"
)

// scanState drives DoSubstitution's small state machine.
type scanState int

const (
	stateNormal scanState = iota
	stateAfterDollar
	stateUnbracketed
	stateBracketed
)

func isNameStart(r byte) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNameCont(r byte) bool {
	return isNameStart(r) || (r >= '0' && r <= '9')
}

// Get returns the value of an environment variable, or "" if unset.
func Get(name string) string {
	return os.Getenv(name)
}

// GetRequired returns the value of name, failing ENV_MISSING if unset.
func GetRequired(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", mkerrors.EnvMissing(name)
	}
	return v, nil
}

// SetTargetSpecific derives LEGATO_TARGET and LEGATO_BUILD from
// LEGATO_ROOT and writes them into the process environment, mirroring
// spec.md §4.1's SetTargetSpecific.
func SetTargetSpecific(target string) error {
	root, err := GetRequired("LEGATO_ROOT")
	if err != nil {
		return err
	}
	if err := os.Setenv("LEGATO_TARGET", target); err != nil {
		return err
	}
	build := filepath.Join(root, "build", target)
	return os.Setenv("LEGATO_BUILD", build)
}

// DoSubstitution expands $NAME and ${NAME} references in text. Unset
// variables expand to the empty string but are still recorded in
// usedSet (if non-nil) so the lexer can blame the token that produced
// them for incremental-build invalidation (spec.md §4.2 "#include").
func DoSubstitution(text string, usedSet map[string]bool) (string, error) {
	var out strings.Builder
	state := stateNormal
	var name strings.Builder

	flushUnbracketed := func() {
		v := Get(name.String())
		if usedSet != nil {
			usedSet[name.String()] = true
		}
		out.WriteString(v)
		name.Reset()
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch state {
		case stateNormal:
			if c == '$' {
				state = stateAfterDollar
			} else {
				out.WriteByte(c)
			}
			i++
		case stateAfterDollar:
			if c == '{' {
				state = stateBracketed
				i++
			} else if isNameStart(c) {
				state = stateUnbracketed
				name.WriteByte(c)
				i++
			} else {
				// Not a valid reference start: emit the '$' literally and
				// reprocess this character in NORMAL state.
				out.WriteByte('$')
				state = stateNormal
			}
		case stateUnbracketed:
			if isNameCont(c) {
				name.WriteByte(c)
				i++
			} else {
				flushUnbracketed()
				state = stateNormal
			}
		case stateBracketed:
			if c == '}' {
				v := Get(name.String())
				if usedSet != nil {
					usedSet[name.String()] = true
				}
				out.WriteString(v)
				name.Reset()
				state = stateNormal
				i++
			} else if isNameCont(c) || (name.Len() == 0 && isNameStart(c)) {
				name.WriteByte(c)
				i++
			} else {
				return "", fmt.Errorf("malformed environment reference: illegal character %q in ${...}", c)
			}
		}
	}

	switch state {
	case stateUnbracketed:
		flushUnbracketed()
	case stateBracketed:
		return "", fmt.Errorf("malformed environment reference: unterminated ${%s", name.String())
	case stateAfterDollar:
		out.WriteByte('$')
	}

	return out.String(), nil
}

// FindFile searches searchDirs in order for a regular file named name,
// returning the first match. The last element checked is always
// LEGATO_ROOT if it is set and not already present in searchDirs.
func FindFile(name string, searchDirs []string) (string, bool) {
	return find(name, searchDirs, func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	})
}

// FindDir searches searchDirs in order for a directory named name.
func FindDir(name string, searchDirs []string) (string, bool) {
	return find(name, searchDirs, func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && info.IsDir()
	})
}

func find(name string, searchDirs []string, match func(string) bool) (string, bool) {
	dirs := append([]string{}, searchDirs...)
	if root := Get("LEGATO_ROOT"); root != "" {
		found := false
		for _, d := range dirs {
			if d == root {
				found = true
				break
			}
		}
		if !found {
			dirs = append(dirs, root)
		}
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if match(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// SnapshotName is the incremental-build cache file written under the
// working directory (spec.md §6): a line-sorted copy of environ from the
// previous successful run.
const SnapshotName = "mktool_environment"

// Save persists the full process environment, one "KEY=VALUE" line per
// entry, sorted, to path. Byte-for-byte equality of this file across runs
// is the incremental-build cache key (spec.md §4.1, §6 "mktool_environment").
func Save(path string) error {
	lines := os.Environ()
	sort.Strings(lines)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// MatchesSaved reports whether the process environment is identical,
// line-by-line, to the snapshot previously written by Save. A missing
// snapshot file is treated as "does not match" (first build).
func MatchesSaved(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	saved := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	current := os.Environ()
	sort.Strings(current)

	if len(saved) == 1 && saved[0] == "" {
		saved = nil
	}

	if len(saved) != len(current) {
		return false, nil
	}
	for i := range saved {
		if saved[i] != current[i] {
			return false, nil
		}
	}
	return true, nil
}
