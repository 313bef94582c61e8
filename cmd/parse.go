package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/sg/internal/report"
	"github.com/gnolang/sg/lang"
)

var (
	parseLang string
	parseAll  bool
	parseSexp bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the syntax tree of a file",
	Long: `Parses FILE with the language given by --lang, or the language its path
resolves to, and prints the tree. Use - to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var (
			l   lang.SgLang
			err error
		)
		if parseLang != "" {
			l, err = lang.FromName(registry, parseLang)
			if err != nil {
				return err
			}
		} else {
			var ok bool
			if l, ok = lang.FromPath(registry, path); !ok {
				return fmt.Errorf("%w for %s; use --lang", lang.ErrNoLanguage, path)
			}
		}

		var src []byte
		if path == "-" {
			src, err = io.ReadAll(cmd.InOrStdin())
		} else {
			src, err = os.ReadFile(path)
		}
		if err != nil {
			return err
		}

		return printTree(cmd.OutOrStdout(), l, src, parseAll, parseSexp)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseLang, "lang", "l", "", "Language to parse with")
	parseCmd.Flags().BoolVarP(&parseAll, "all", "a", false, "Include anonymous nodes")
	parseCmd.Flags().BoolVar(&parseSexp, "sexp", false, "Print the tree as an s-expression")
}

func printTree(w io.Writer, l lang.SgLang, src []byte, all, sexp bool) error {
	root, err := l.Parse(string(src))
	if err != nil {
		return err
	}
	if sexp {
		fmt.Fprintln(w, root.Root().ToSexp())
		return nil
	}
	fmt.Fprint(w, report.FormatTree(root.Root(), all))
	return nil
}
