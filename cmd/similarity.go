package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// similarityCmd prints the cosine similarity of two words.
var similarityCmd = &cobra.Command{
	Use:   "similarity WORD WORD",
	Short: "Print the cosine similarity of two word vectors",
	Args:  cobra.ExactArgs(2),
	RunE:  runSimilarity,
}

func init() {
	rootCmd.AddCommand(similarityCmd)
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	gen, err := openGenerator()
	if err != nil {
		return err
	}
	sim, ok := gen.Similarity(args[0], args[1])
	if !ok {
		return fmt.Errorf("no similarity for %q and %q: %w", args[0], args[1], errUnknownWords)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", sim)
	return nil
}
