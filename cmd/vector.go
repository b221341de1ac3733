package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/sememe/core/vector"
)

var (
	vectorNormalize bool
	vectorExplain   bool
	vectorJSON      bool
)

// errUnknownWords is returned after all words were printed if any was absent.
var errUnknownWords = errors.New("some words are not in the glossary")

// vectorCmd prints word feature vectors.
var vectorCmd = &cobra.Command{
	Use:   "vector WORD...",
	Short: "Print the feature vector of each word",
	Long: `Print the sememe feature vector of each word.

By default each vector is printed as one line of space-separated weights.
--explain lists only the non-zero components with their sememe names.

Examples:
  sememe vector 对                  # Raw vector
  sememe vector --normalize 对 错   # Unit-length vectors
  sememe vector --explain 对        # Active sememes and weights`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVector,
}

func init() {
	rootCmd.AddCommand(vectorCmd)
	vectorCmd.Flags().BoolVarP(&vectorNormalize, "normalize", "n", false, "L2-normalize each vector")
	vectorCmd.Flags().BoolVar(&vectorExplain, "explain", false, "List non-zero components by sememe")
	vectorCmd.Flags().BoolVar(&vectorJSON, "json", false, "Output as JSON")
}

type vectorOutput struct {
	Word    string          `json:"word"`
	Known   bool            `json:"known"`
	Vector  []float64       `json:"vector,omitempty"`
	Weights []vector.Weight `json:"weights,omitempty"`
}

func runVector(cmd *cobra.Command, args []string) error {
	gen, err := openGenerator()
	if err != nil {
		return err
	}

	var outputs []vectorOutput
	unknown := 0
	for _, word := range args {
		out := vectorOutput{Word: word}
		if vectorExplain {
			out.Weights, out.Known = gen.Explain(word)
		} else {
			out.Vector, out.Known = gen.Vector(word)
			if out.Known && vectorNormalize {
				if normalized, ok := vector.Normalize(out.Vector); ok {
					out.Vector = normalized
				}
			}
		}
		if !out.Known {
			unknown++
			logger.Warn("word not in glossary", "word", word)
		}
		outputs = append(outputs, out)
	}

	w := cmd.OutOrStdout()
	if vectorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return err
		}
	} else {
		for _, out := range outputs {
			printVector(w, out)
		}
	}

	if unknown > 0 {
		return errUnknownWords
	}
	return nil
}

func printVector(w io.Writer, out vectorOutput) {
	if !out.Known {
		fmt.Fprintf(w, "%s\t<unknown>\n", out.Word)
		return
	}
	if out.Weights != nil {
		fmt.Fprintf(w, "%s\n", out.Word)
		for _, wt := range out.Weights {
			fmt.Fprintf(w, "  %-6d %-24s depth=%-3d %g\n", wt.ID, wt.Sememe, wt.Depth, wt.Value)
		}
		return
	}
	parts := make([]string, len(out.Vector))
	for i, x := range out.Vector {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	fmt.Fprintf(w, "%s\t%s\n", out.Word, strings.Join(parts, " "))
}
