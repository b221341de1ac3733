package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adalundhe/sememe/core/dataset"
)

var (
	translateFolds  int
	translatePrefix string
	translateSep    string
)

// translateCmd converts word-pair samples into input and target files.
var translateCmd = &cobra.Command{
	Use:   "translate [DATA INPUT TARGET]",
	Short: "Convert word-pair samples into feature and label files",
	Long: `Convert samples of the form "wordA wordB label" into an input file, with
one line of concatenated normalized vectors per sample, and a target file
with the matching labels. Samples with unknown words are skipped.

With --folds N the files are derived from --prefix and --sep:
"<prefix><i>" is read and "input<sep><name>" and "target<sep><name>" are
written beside it for i in [0, N), where name is the sample file name.

Examples:
  sememe translate pairs.txt input.txt target.txt
  sememe translate --folds 10 --prefix train- --sep -`,
	Args: func(cmd *cobra.Command, args []string) error {
		if translateFolds > 0 {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().IntVar(&translateFolds, "folds", 0, "Translate this many numbered sample files")
	translateCmd.Flags().StringVar(&translatePrefix, "prefix", "train-", "Sample file prefix for --folds")
	translateCmd.Flags().StringVar(&translateSep, "sep", "-", "Separator between output prefix and sample file name")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	gen, err := openGenerator()
	if err != nil {
		return err
	}

	type job struct{ data, input, target string }
	var jobs []job
	if translateFolds > 0 {
		for i := 0; i < translateFolds; i++ {
			data, input, target := dataset.FoldPaths(translatePrefix, translateSep, i)
			jobs = append(jobs, job{data, input, target})
		}
	} else {
		jobs = append(jobs, job{args[0], args[1], args[2]})
	}

	for _, j := range jobs {
		stats, err := dataset.TranslateFile(j.data, j.input, j.target, gen, logger)
		if err != nil {
			return fmt.Errorf("translate %s: %w", j.data, err)
		}
		logger.Info("samples translated",
			slog.String("data", j.data),
			slog.Int("written", stats.Written),
			slog.Int("unknown", stats.Unknown),
			slog.Int("malformed", stats.Malformed))
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d written, %d unknown, %d malformed\n",
			j.data, stats.Written, stats.Unknown, stats.Malformed)
	}
	return nil
}
