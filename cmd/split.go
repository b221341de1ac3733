package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/sememe/core/dataset"
)

var (
	splitTrain string
	splitTest  string
	splitSep   string
	splitRate  float64
	splitFolds int
	splitSeed  uint64
)

// splitCmd partitions a sample file into random train and test folds.
var splitCmd = &cobra.Command{
	Use:   "split INPUT",
	Short: "Partition a sample file into train and test folds",
	Long: `Partition the lines of INPUT into --folds independent random train/test
splits. Each fold writes "<train><sep><i>" and "<test><sep><i>", with
floor(lines * rate) lines in the test file.

Examples:
  sememe split input.txt
  sememe split input.txt --rate 0.2 --folds 10 --seed 42`,
	Args: cobra.ExactArgs(1),
	// Splitting never touches the semantic database.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVar(&splitTrain, "train", "train", "Train file prefix")
	splitCmd.Flags().StringVar(&splitTest, "test", "test", "Test file prefix")
	splitCmd.Flags().StringVar(&splitSep, "sep", "-", "Separator between prefix and fold number")
	splitCmd.Flags().Float64Var(&splitRate, "rate", 0.2, "Fraction of lines placed in the test file")
	splitCmd.Flags().IntVar(&splitFolds, "folds", 10, "Number of folds")
	splitCmd.Flags().Uint64Var(&splitSeed, "seed", 0, "Random seed (0 uses the current time)")
}

func runSplit(_ *cobra.Command, args []string) error {
	seed := splitSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return dataset.SplitFile(args[0], dataset.SplitOptions{
		TrainPrefix: splitTrain,
		TestPrefix:  splitTest,
		Sep:         splitSep,
		Rate:        splitRate,
		Folds:       splitFolds,
		Seed:        seed,
	})
}
