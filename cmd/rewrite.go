package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sg/internal/config"
	"github.com/gnolang/sg/internal/report"
	"github.com/gnolang/sg/lang"
)

var (
	rewriteLang     string
	rewriteTemplate string
	templateFile    string
	singleBinds     []string
	multiBinds      []string
	bindingsFile    string
	showEnv         bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Render a replacement template from meta-variable bindings",
	Example: `  sg rewrite -l js -t 'let $V = $A' --bind V=a --bind A=123
  sg rewrite -l js -t 'let a = () => { $$$B }' --bind-multi "B=alert('works!');"
  sg rewrite -l py -f template.py --env bindings.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lang.FromName(registry, rewriteLang)
		if err != nil {
			return err
		}

		template := rewriteTemplate
		if templateFile != "" {
			data, err := os.ReadFile(templateFile)
			if err != nil {
				return err
			}
			template = string(data)
		}

		var b config.Bindings
		if bindingsFile != "" {
			if b, err = config.LoadBindings(bindingsFile); err != nil {
				return err
			}
		}
		if err := b.ParseBindArgs(singleBinds, multiBinds); err != nil {
			return err
		}

		return runRewrite(cmd.OutOrStdout(), logger, l, template, b, showEnv)
	},
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteLang, "lang", "l", "", "Language of the template and the bound snippets")
	rewriteCmd.Flags().StringVarP(&rewriteTemplate, "template", "t", "", "Replacement template")
	rewriteCmd.Flags().StringVarP(&templateFile, "template-file", "f", "", "Read the replacement template from a file")
	rewriteCmd.Flags().StringArrayVar(&singleBinds, "bind", nil, "Bind NAME=SNIPPET as a single capture (repeatable)")
	rewriteCmd.Flags().StringArrayVar(&multiBinds, "bind-multi", nil, "Append the top-level nodes of SNIPPET to the multi capture NAME (repeatable)")
	rewriteCmd.Flags().StringVar(&bindingsFile, "env", "", "YAML file with single and multi bindings")
	rewriteCmd.Flags().BoolVar(&showEnv, "show-env", false, "Print the bindings before the result")
	_ = rewriteCmd.MarkFlagRequired("lang")
	rewriteCmd.MarkFlagsOneRequired("template", "template-file")
	rewriteCmd.MarkFlagsMutuallyExclusive("template", "template-file")
}

func runRewrite(w io.Writer, logger *zap.Logger, l lang.SgLang, template string, b config.Bindings, showEnv bool) error {
	env, err := b.Env(l)
	if err != nil {
		return err
	}
	logger.Debug("Rendering template",
		zap.Stringer("lang", l),
		zap.Strings("bound", env.Names()))

	out, err := l.Template(template).GenerateReplacement(env)
	if err != nil {
		if errors.Is(err, lang.ErrUnboundLanguage) {
			return fmt.Errorf("%w; is it declared in %s?", err, config.DefaultFileName)
		}
		return err
	}

	if showEnv {
		fmt.Fprint(w, report.FormatEnv(env))
	}
	fmt.Fprintln(w, out)
	return nil
}
