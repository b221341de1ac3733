package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
)

var (
	ErrInvalidRate  = errors.New("dataset: rate must be within [0, 1]")
	ErrInvalidFolds = errors.New("dataset: folds must be positive")
)

// Split picks floor(len(lines)*rate) distinct lines at random as the test
// set and returns the rest as the training set. Both keep input order.
func Split(lines []string, rate float64, rng *rand.Rand) (train, test []string, err error) {
	if !(rate >= 0 && rate <= 1) {
		return nil, nil, ErrInvalidRate
	}
	k := int(float64(len(lines)) * rate)
	chosen := make(map[int]struct{}, k)
	for _, i := range rng.Perm(len(lines))[:k] {
		chosen[i] = struct{}{}
	}
	for i, line := range lines {
		if _, ok := chosen[i]; ok {
			test = append(test, line)
		} else {
			train = append(train, line)
		}
	}
	return train, test, nil
}

// SplitOptions configures SplitFile.
type SplitOptions struct {
	TrainPrefix string
	TestPrefix  string
	Sep         string
	Rate        float64
	Folds       int
	Seed        uint64
}

// SplitFile reads inputPath and writes opts.Folds independent random
// partitions to "<train><sep><i>" and "<test><sep><i>".
func SplitFile(inputPath string, opts SplitOptions) error {
	if opts.Folds <= 0 {
		return ErrInvalidFolds
	}
	lines, err := readLines(inputPath)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	for i := 0; i < opts.Folds; i++ {
		train, test, err := Split(lines, opts.Rate, rng)
		if err != nil {
			return err
		}
		suffix := opts.Sep + strconv.Itoa(i)
		if err := writeLines(opts.TrainPrefix+suffix, train); err != nil {
			return fmt.Errorf("fold %d train: %w", i, err)
		}
		if err := writeLines(opts.TestPrefix+suffix, test); err != nil {
			return fmt.Errorf("fold %d test: %w", i, err)
		}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
