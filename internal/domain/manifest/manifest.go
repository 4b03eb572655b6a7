package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a logical manifest line.
type Kind string

const (
	// KindRequirement is a package name with optional extras, markers and constraints.
	KindRequirement Kind = "requirement"
	// KindEditable is an `-e`/`--editable` install.
	KindEditable Kind = "editable"
	// KindOption is any other pip option line, such as `-r` or `--index-url`.
	KindOption Kind = "option"
)

var (
	// ErrManifestNotFound is returned when the manifest path does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestIsDirectory is returned when the manifest path is a directory.
	ErrManifestIsDirectory = errors.New("manifest path is a directory")
)

// Entry is one logical line of the manifest after joining continuations.
type Entry struct {
	// Line is the 1-based number of the first physical line.
	Line int
	// Text is the line with comments and surrounding whitespace removed.
	Text string
	// Kind classifies the line.
	Kind Kind
	// Name is the project name for requirement lines, empty otherwise.
	Name string
}

// Manifest is a parsed requirements file.
type Manifest struct {
	// Path is the file the manifest was read from.
	Path string
	// Entries holds the non-empty logical lines in file order.
	Entries []Entry
}

// Load reads and classifies the manifest at path.
func Load(path string) (*Manifest, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}

		return nil, fmt.Errorf("stat manifest: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrManifestIsDirectory)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	return &Manifest{Path: path, Entries: entries}, nil
}

// Parse classifies every logical line read from r.
// It only fails when r does.
func Parse(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		pending strings.Builder
		start   int
		lineNo  int
	)

	flush := func() {
		text := strings.TrimSpace(pending.String())
		pending.Reset()

		if text == "" {
			return
		}

		entries = append(entries, classify(start, text))
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1<<20)

	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if pending.Len() == 0 {
			start = lineNo
		}

		if trimmed := strings.TrimRight(line, " \t"); strings.HasSuffix(trimmed, `\`) {
			pending.WriteString(strings.TrimSuffix(trimmed, `\`))
			pending.WriteByte(' ')

			continue
		}

		pending.WriteString(line)
		flush()
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()

	return entries, nil
}

// Requirements returns the requirement and editable entries.
func (m *Manifest) Requirements() []Entry {
	result := make([]Entry, 0, len(m.Entries))
	for _, entry := range m.Entries {
		if entry.Kind != KindOption {
			result = append(result, entry)
		}
	}

	return result
}

// Names returns project names of requirement entries in file order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		if entry.Name != "" {
			names = append(names, entry.Name)
		}
	}

	return names
}

// stripComment drops a `#` comment. pip only treats `#` as a comment at line
// start or after whitespace, so URL fragments survive.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}

		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return line[:i]
		}
	}

	return line
}

func classify(line int, text string) Entry {
	entry := Entry{Line: line, Text: text}

	switch {
	case strings.HasPrefix(text, "-e") || strings.HasPrefix(text, "--editable"):
		entry.Kind = KindEditable
	case strings.HasPrefix(text, "-"):
		entry.Kind = KindOption
	default:
		entry.Kind = KindRequirement
		entry.Name = projectName(text)
	}

	return entry
}

// projectName returns the text before the first version, extras, marker or
// URL delimiter.
func projectName(text string) string {
	if i := strings.IndexAny(text, "<>=!~;[@ \t"); i >= 0 {
		text = text[:i]
	}

	return strings.TrimSpace(text)
}
