package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sg/internal/report"
	"github.com/gnolang/sg/internal/scan"
)

var (
	scanJsonOutput bool
	scanOutPath    string
	scanWatch      bool
	scanWorkers    int
	scanProgress   bool
	scanCacheDir   string
	scanExclude    []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Parse files with their resolved grammar and report syntax errors",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := []scan.Option{
			scan.WithLogger(logger),
			scan.WithWorkers(scanWorkers),
			scan.WithExclude(scanExclude...),
		}
		if scanProgress {
			opts = append(opts, scan.WithProgress(cmd.ErrOrStderr()))
		}
		if scanCacheDir != "" {
			cache, err := scan.NewCache(scanCacheDir)
			if err != nil {
				logger.Warn("Scanning without cache", zap.Error(err))
			} else {
				opts = append(opts, scan.WithCache(cache))
			}
		}
		scanner := scan.New(scan.RegistryResolver{Registry: registry}, opts...)

		if scanWatch {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err := scanner.Watch(ctx, args, func(path string, issues []report.Issue, err error) {
				if err != nil {
					logger.Error("Error scanning file", zap.String("file", path), zap.Error(err))
					return
				}
				if len(issues) == 0 {
					logger.Info("No issues found", zap.String("file", path))
					return
				}
				printIssues(cmd.OutOrStdout(), logger, issues, false, "")
			})
			if err != nil {
				logger.Fatal("Failed to watch paths", zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		issues, err := runScan(ctx, cmd.OutOrStdout(), logger, scanner, args, scanJsonOutput, scanOutPath)
		if err != nil {
			logger.Error("Error scanning files", zap.Error(err))
			os.Exit(1)
		}
		if len(issues) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanJsonOutput, "json", false, "Output issues in JSON format")
	scanCmd.Flags().StringVarP(&scanOutPath, "output", "o", "", "Output path (when using JSON)")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Re-scan files as they change")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Number of files parsed at once (default: number of CPUs)")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", false, "Show a progress bar while scanning directories")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Files or directories to skip")
	scanCmd.Flags().StringVar(&scanCacheDir, "cache-dir", "", "Reuse results of unchanged files stored in this directory")
}

func runScan(ctx context.Context, w io.Writer, logger *zap.Logger, scanner *scan.Scanner, paths []string, isJson bool, jsonOutput string) ([]report.Issue, error) {
	issues, err := scanner.ScanPaths(ctx, paths)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return issues, fmt.Errorf("scan timed out after %s: %w", timeout, err)
		}
		// files that could not be read are logged by the scanner
		logger.Warn("Some files were not scanned", zap.Error(err))
	}
	printIssues(w, logger, issues, isJson, jsonOutput)
	return issues, nil
}

func printIssues(w io.Writer, logger *zap.Logger, issues []report.Issue, isJson bool, jsonOutput string) {
	issuesByFile, sortedFiles := report.GroupByFile(issues)

	if !isJson {
		for _, filename := range sortedFiles {
			src, err := os.ReadFile(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
			fmt.Fprintln(w, report.FormatIssues(issuesByFile[filename], report.NewSourceCode(src)))
		}
		return
	}

	d, err := json.Marshal(issuesByFile)
	if err != nil {
		logger.Error("Error marshalling issues to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Fprintln(w, string(d))
		return
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
