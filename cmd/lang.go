package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/lang"
)

var langCmd = &cobra.Command{
	Use:   "lang",
	Short: "Inspect builtin and custom languages",
}

var langListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every available language",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listLanguages(cmd.OutOrStdout(), registry)
	},
}

var langResolveCmd = &cobra.Command{
	Use:   "resolve [paths...]",
	Short: "Show which language governs each path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resolveLanguages(cmd.OutOrStdout(), registry, args)
	},
}

var preprocessLang string

var langPreprocessCmd = &cobra.Command{
	Use:   "preprocess PATTERN",
	Short: "Show a pattern after meta-variable markers are expanded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lang.FromName(registry, preprocessLang)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), l.PreProcessPattern(args[0]))
		return nil
	},
}

func init() {
	langPreprocessCmd.Flags().StringVarP(&preprocessLang, "lang", "l", "", "Language of the pattern")
	_ = langPreprocessCmd.MarkFlagRequired("lang")

	langCmd.AddCommand(langListCmd)
	langCmd.AddCommand(langResolveCmd)
	langCmd.AddCommand(langPreprocessCmd)
}

func listLanguages(w io.Writer, reg *dynamic.Registry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tMETAVAR\tEXPANDO\tEXTENSIONS")
	for _, l := range lang.All(reg) {
		kind := "builtin"
		if c, ok := l.Custom(); ok {
			kind = "custom " + c.LibraryPath()
		}
		fmt.Fprintf(tw, "%s\t%s\t%c\t%c\t%s\n",
			l.Name(), kind, l.MetaVarChar(), l.ExpandoChar(), strings.Join(l.Extensions(), ","))
	}
	_ = tw.Flush()
}

func resolveLanguages(w io.Writer, reg *dynamic.Registry, paths []string) error {
	var missing []string
	for _, path := range paths {
		l, ok := lang.FromPath(reg, path)
		if !ok {
			missing = append(missing, path)
		}
		fmt.Fprintf(w, "%s\t%s\n", path, l)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", lang.ErrNoLanguage, strings.Join(missing, ", "))
	}
	return nil
}
