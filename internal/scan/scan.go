package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/internal/nolint"
	"github.com/gnolang/sg/internal/report"
	"github.com/gnolang/sg/internal/trie"
	"github.com/gnolang/sg/lang"
)

// RuleSyntaxError names issues raised for ERROR and MISSING nodes.
const RuleSyntaxError = "syntax-error"

// maxSnippetLen bounds the offending text quoted in a message.
const maxSnippetLen = 40

// Resolver picks the grammar for a file.
type Resolver interface {
	Resolve(path string) (lang.SgLang, bool)
}

// RegistryResolver resolves builtin languages first, then the custom
// languages of Registry.
type RegistryResolver struct {
	Registry *dynamic.Registry
}

func (r RegistryResolver) Resolve(path string) (lang.SgLang, bool) {
	return lang.FromPath(r.Registry, path)
}

// Scanner parse-checks files. Each worker builds its own trees; language
// handles and the registry behind the resolver are only read.
type Scanner struct {
	resolver Resolver
	logger   *zap.Logger
	workers  int
	progress io.Writer
	cache    *Cache
	exclude  *trie.Trie
}

// Option configures a Scanner.
type Option func(*Scanner)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithWorkers bounds the number of files parsed at once.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress draws a progress bar on w while scanning directories.
func WithProgress(w io.Writer) Option {
	return func(s *Scanner) { s.progress = w }
}

// WithCache reuses the issues of files whose content has not changed.
func WithCache(c *Cache) Option {
	return func(s *Scanner) { s.cache = c }
}

// WithExclude skips the given files and directories while walking. A path
// matches either as walked or relative to the directory being scanned.
func WithExclude(paths ...string) Option {
	return func(s *Scanner) { s.exclude = trie.NewPathSet(paths...) }
}

func New(resolver Resolver, opts ...Option) *Scanner {
	s := &Scanner{
		resolver: resolver,
		logger:   zap.NewNop(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanSource reports the syntax errors of src parsed as l. Errors on lines
// covered by an sg-ignore comment are dropped.
func (s *Scanner) ScanSource(path string, l lang.SgLang, src []byte) ([]report.Issue, error) {
	root, err := l.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	ignored := nolint.ParseComments(root.Root())

	issues := []report.Issue{}
	for _, bad := range root.Root().Errors() {
		row, col := bad.Position()
		endRow, endCol := bad.EndPosition()
		if ignored.IsNolint(row+1, RuleSyntaxError) {
			continue
		}

		var msg string
		if bad.IsMissing() {
			msg = fmt.Sprintf("missing %s", bad.Kind())
		} else {
			msg = fmt.Sprintf("unexpected %q", snippet(bad.Text()))
		}
		issues = append(issues, report.Issue{
			Rule:     RuleSyntaxError,
			Language: l.Name(),
			Filename: path,
			Message:  msg,
			Note:     fmt.Sprintf("parsed as %s", l.Name()),
			Start:    report.Position{Line: row + 1, Column: col + 1},
			End:      report.Position{Line: endRow + 1, Column: endCol + 1},
		})
	}
	return issues, nil
}

// ScanFile reads and checks one file.
func (s *Scanner) ScanFile(path string) ([]report.Issue, error) {
	l, ok := s.resolver.Resolve(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", lang.ErrNoLanguage, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if issues, ok := s.cache.Get(path, l, src); ok {
			s.logger.Debug("Using cached result", zap.String("file", path))
			return issues, nil
		}
	}
	issues, err := s.ScanSource(path, l, src)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(path, l, src, issues)
	}
	return issues, nil
}

// ScanPaths checks every path in turn.
func (s *Scanner) ScanPaths(ctx context.Context, paths []string) ([]report.Issue, error) {
	var (
		all  []report.Issue
		errs []error
	)
	for _, path := range paths {
		issues, err := s.ScanPath(ctx, path)
		all = append(all, issues...)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return all, err
			}
			errs = append(errs, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Save(); err != nil {
			s.logger.Warn("Failed to save scan cache", zap.Error(err))
		}
	}
	return all, errors.Join(errs...)
}

// ScanPath checks a file, or every file under a directory that some grammar
// claims. Directory entries are parsed by a bounded pool of workers. Files
// that fail are logged and reported together in the returned error; issues
// from the others are still returned.
func (s *Scanner) ScanPath(ctx context.Context, path string) ([]report.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return s.ScanFile(path)
	}

	files, err := s.collect(path)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	type result struct {
		issues []report.Issue
		err    error
	}
	results := make(chan result, len(files))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	var cancelled error
dispatch:
	for _, fp := range files {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			issues, err := s.ScanFile(fp)
			if err != nil {
				s.logger.Error("Error scanning file", zap.String("file", fp), zap.Error(err))
			}
			results <- result{issues: issues, err: err}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(fp)
	}
	wg.Wait()
	close(results)

	issues := []report.Issue{}
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		issues = append(issues, r.issues...)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(s.progress)
	}

	sortIssues(issues)
	if cancelled != nil {
		return issues, cancelled
	}
	return issues, errors.Join(errs...)
}

// collect lists the files under dir that a grammar claims, skipping hidden
// directories.
func (s *Scanner) collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && s.excluded(dir, path) {
			s.logger.Debug("Skipping excluded path", zap.String("path", path))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.resolver.Resolve(path); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", dir, err)
	}
	return files, nil
}

func (s *Scanner) excluded(root, path string) bool {
	if s.exclude.CoversPath(path) {
		return true
	}
	rel, err := filepath.Rel(root, path)
	return err == nil && s.exclude.CoversPath(rel)
}

func sortIssues(issues []report.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})
}

func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "..."
	}
	if len(text) > maxSnippetLen {
		text = text[:maxSnippetLen] + "..."
	}
	return text
}
