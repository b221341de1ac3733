package sememe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// maxLineBytes bounds a single resource line.
const maxLineBytes = 1 << 20

// Loader reads the two raw resources. Each resource is parsed at most once
// per Loader; later calls return the in-memory result. A failed load keeps
// nothing, so a retry re-reads the file.
type Loader struct {
	HierarchyPath string
	GlossaryPath  string

	mu        sync.Mutex
	hierarchy []HierarchyRecord
	glossary  *Glossary
}

// NewLoader creates a loader for the given resource paths.
func NewLoader(hierarchyPath, glossaryPath string) *Loader {
	return &Loader{HierarchyPath: hierarchyPath, GlossaryPath: glossaryPath}
}

// LoadHierarchy returns the hierarchy records in file order.
func (l *Loader) LoadHierarchy() ([]HierarchyRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hierarchy != nil {
		return l.hierarchy, nil
	}
	var records []HierarchyRecord
	err := readResource(ResourceHierarchy, l.HierarchyPath, func(r io.Reader) error {
		var err error
		records, err = ParseHierarchy(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.hierarchy = records
	return records, nil
}

// LoadGlossary returns the parsed glossary.
func (l *Loader) LoadGlossary() (*Glossary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.glossary != nil {
		return l.glossary, nil
	}
	var g *Glossary
	err := readResource(ResourceGlossary, l.GlossaryPath, func(r io.Reader) error {
		var err error
		g, err = ParseGlossary(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.glossary = g
	return g, nil
}

func readResource(resource, path string, parse func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Resource: resource, Path: path, Err: err}
	}
	defer f.Close()

	if err := parse(f); err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return err
		}
		return &LoadError{Resource: resource, Path: path, Err: err}
	}
	return nil
}

// hierarchySep splits hierarchy fields. A line that starts with whitespace
// yields an empty first field, so the name and parent index stay in the
// third and fourth positions on indented lines.
var hierarchySep = regexp.MustCompile(`\s+`)

// ParseHierarchy parses whitespace-delimited hierarchy lines. The third
// field is the sememe name and the fourth the 0-based position of the
// parent record. Parent indexes count lines, so a blank line followed by
// another record is a ParseError; trailing blank lines are ignored.
func ParseHierarchy(r io.Reader) ([]HierarchyRecord, error) {
	records := make([]HierarchyRecord, 0, 2048)
	blankLine := 0
	err := scanLines(r, func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			if blankLine == 0 {
				blankLine = lineNo
			}
			return nil
		}
		if blankLine != 0 {
			return &ParseError{Resource: ResourceHierarchy, Line: blankLine, Text: "",
				Reason: "blank line would shift parent positions"}
		}
		fields := hierarchySep.Split(line, -1)
		if len(fields) < 4 {
			return &ParseError{Resource: ResourceHierarchy, Line: lineNo, Text: line,
				Reason: fmt.Sprintf("expected at least 4 fields, got %d", len(fields))}
		}
		if fields[2] == "" {
			return &ParseError{Resource: ResourceHierarchy, Line: lineNo, Text: line,
				Reason: "empty sememe name"}
		}
		parent, err := strconv.Atoi(fields[3])
		if err != nil {
			return &ParseError{Resource: ResourceHierarchy, Line: lineNo, Text: line,
				Reason: "parent index is not an integer"}
		}
		records = append(records, HierarchyRecord{Name: fields[2], Parent: parent})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseGlossary parses tab-delimited glossary lines of word, part of speech
// and a comma-separated sememe list. Each line adds one sense.
func ParseGlossary(r io.Reader) (*Glossary, error) {
	g := NewGlossary()
	err := scanLines(r, func(lineNo int, line string) error {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			return nil
		}
		fields := strings.Split(trimmed, "\t")
		if len(fields) != 3 {
			return &ParseError{Resource: ResourceGlossary, Line: lineNo, Text: line,
				Reason: fmt.Sprintf("expected 3 tab-separated fields, got %d", len(fields))}
		}
		word := strings.TrimSpace(fields[0])
		if word == "" {
			return &ParseError{Resource: ResourceGlossary, Line: lineNo, Text: line, Reason: "empty word"}
		}
		var sememes []string
		for _, tok := range strings.Split(fields[2], ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				sememes = append(sememes, tok)
			}
		}
		if len(sememes) == 0 {
			return &ParseError{Resource: ResourceGlossary, Line: lineNo, Text: line, Reason: "empty sememe list"}
		}
		g.Add(GlossEntry{
			Word:         word,
			PartOfSpeech: strings.TrimSpace(fields[1]),
			Sememes:      sememes,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func scanLines(r io.Reader, fn func(lineNo int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := fn(lineNo, strings.TrimRight(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}
