// Package dataset turns labelled word-pair samples into numeric feature
// files and partitions sample files into train and test folds.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adalundhe/sememe/core/vector"
)

// Vectorizer produces the raw feature vector of a word.
type Vectorizer interface {
	Vector(word string) ([]float64, bool)
}

// TranslateStats counts what happened to each sample line.
type TranslateStats struct {
	Written   int `json:"written"`
	Unknown   int `json:"unknown"`
	Malformed int `json:"malformed"`
}

// Translate reads samples of the form "wordA wordB label" and writes, per
// usable sample, one input line holding the normalized vector of wordA
// followed by that of wordB, and one target line holding the label as-is.
// Samples naming an unknown word, or a word with a zero vector, are skipped
// and logged.
func Translate(samples io.Reader, input, target io.Writer, vz Vectorizer, logger *slog.Logger) (TranslateStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats TranslateStats

	in := bufio.NewWriter(input)
	tg := bufio.NewWriter(target)

	sc := bufio.NewScanner(samples)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			stats.Malformed++
			logger.Warn("sample skipped: expected word, word, label",
				slog.Int("line", lineNo),
				slog.String("text", sc.Text()))
			continue
		}

		va, okA := normalizedVector(vz, fields[0])
		vb, okB := normalizedVector(vz, fields[1])
		if !okA || !okB {
			stats.Unknown++
			for _, miss := range []struct {
				word string
				ok   bool
			}{{fields[0], okA}, {fields[1], okB}} {
				if !miss.ok {
					logger.Warn("sample skipped: word has no usable vector",
						slog.Int("line", lineNo),
						slog.String("word", miss.word))
				}
			}
			continue
		}

		if err := writeVector(in, va, vb); err != nil {
			return stats, fmt.Errorf("write input: %w", err)
		}
		if _, err := tg.WriteString(fields[2] + "\n"); err != nil {
			return stats, fmt.Errorf("write target: %w", err)
		}
		stats.Written++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read samples: %w", err)
	}
	if err := in.Flush(); err != nil {
		return stats, fmt.Errorf("write input: %w", err)
	}
	if err := tg.Flush(); err != nil {
		return stats, fmt.Errorf("write target: %w", err)
	}
	return stats, nil
}

func normalizedVector(vz Vectorizer, word string) ([]float64, bool) {
	v, ok := vz.Vector(word)
	if !ok {
		return nil, false
	}
	return vector.Normalize(v)
}

func writeVector(w *bufio.Writer, parts ...[]float64) error {
	first := true
	for _, part := range parts {
		for _, x := range part {
			if !first {
				if err := w.WriteByte(' '); err != nil {
					return err
				}
			}
			first = false
			if _, err := w.WriteString(strconv.FormatFloat(x, 'g', -1, 64)); err != nil {
				return err
			}
		}
	}
	return w.WriteByte('\n')
}

// TranslateFile runs Translate from dataPath into inputPath and targetPath,
// creating or truncating both outputs.
func TranslateFile(dataPath, inputPath, targetPath string, vz Vectorizer, logger *slog.Logger) (TranslateStats, error) {
	data, err := os.Open(dataPath)
	if err != nil {
		return TranslateStats{}, err
	}
	defer data.Close()

	input, err := os.Create(inputPath)
	if err != nil {
		return TranslateStats{}, err
	}
	defer input.Close()

	target, err := os.Create(targetPath)
	if err != nil {
		return TranslateStats{}, err
	}
	defer target.Close()

	stats, err := Translate(data, input, target, vz, logger)
	if err != nil {
		return stats, err
	}
	if err := input.Close(); err != nil {
		return stats, err
	}
	return stats, target.Close()
}

// FoldPaths names the files of fold i: the sample file "<prefix><i>" and
// its outputs "input<sep><name>" and "target<sep><name>" in the same
// directory, where name is the sample file's base name.
func FoldPaths(prefix, sep string, i int) (data, input, target string) {
	data = prefix + strconv.Itoa(i)
	dir, name := filepath.Split(data)
	return data, dir + "input" + sep + name, dir + "target" + sep + name
}
