package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/fatih/color"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
	kindStyle    = color.New(color.FgCyan)
	textStyle    = color.New(color.FgWhite)
)

// Position is a one-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Issue is a problem found in a file.
type Issue struct {
	Rule     string   `json:"rule"`
	Language string   `json:"language"`
	Filename string   `json:"filename"`
	Message  string   `json:"message"`
	Note     string   `json:"note,omitempty"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

// SourceCode holds the lines of a reported file.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits src into lines.
func NewSourceCode(src []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(src), "\n")}
}

// GroupByFile groups issues by file name and returns the file names sorted.
func GroupByFile(issues []Issue) (map[string][]Issue, []string) {
	byFile := make(map[string][]Issue)
	for _, issue := range issues {
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	files := make([]string, 0, len(byFile))
	for name := range byFile {
		files = append(files, name)
	}
	sort.Strings(files)
	return byFile, files
}

type issueData struct {
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
}

const issueTemplate = `{{header .Rule .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines}}
{{- if .Note }}
{{note .Note}}
{{- end }}
`

var issueTmpl = template.Must(template.New("issue").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}).Parse(issueTemplate))

// FormatIssues renders issues of one file against its source.
func FormatIssues(issues []Issue, source *SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(formatIssue(issue, source))
	}
	return builder.String()
}

func formatIssue(issue Issue, source *SourceCode) string {
	maxLineNumWidth := len(fmt.Sprintf("%d", issue.End.Line))
	data := issueData{
		Rule:            issue.Rule,
		Filename:        issue.Filename,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		StartLine:       issue.Start.Line,
		StartColumn:     issue.Start.Column,
		EndLine:         issue.End.Line,
		EndColumn:       issue.End.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Message:         issue.Message,
		Note:            issue.Note,
		SnippetLines:    source.Lines,
	}

	var buf bytes.Buffer
	if err := issueTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

func header(rule string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	out := errorStyle.Sprint("error: ")
	out += ruleStyle.Sprintf("%s\n", rule)
	out += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	out += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return out
}

func codeSnippet(lines []string, startLine, endLine, maxLineNumWidth int, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(lines) {
			continue
		}
		out += lineStyle.Sprintf("%*d | ", maxLineNumWidth, i)
		out += expandTabs(lines[i-1]) + "\n"
	}
	return out
}

func underlineAndMessage(message, padding string, startLine, endLine, startColumn, endColumn int, lines []string) string {
	out := lineStyle.Sprintf("%s| ", padding)
	if !isValidLineRange(startLine, endLine, lines) {
		return out + messageStyle.Sprintf("%s\n", message)
	}

	start := visualColumn(lines[startLine-1], startColumn)
	end := visualColumn(lines[endLine-1], endColumn)
	length := end - start
	if startLine != endLine || length < 1 {
		length = 1
	}

	out += strings.Repeat(" ", start)
	out += messageStyle.Sprintf("%s\n", strings.Repeat("^", length))
	out += lineStyle.Sprintf("%s= ", padding)
	out += messageStyle.Sprintf("%s\n", message)
	return out
}

func note(text string) string {
	return noteStyle.Sprint("note: ") + lineStyle.Sprintf("%s\n", text)
}

func isValidLineRange(startLine, endLine int, lines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		endLine <= len(lines)
}

func expandTabs(line string) string {
	var expanded strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (col % tabWidth)
			expanded.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		expanded.WriteRune(ch)
		col++
	}
	return expanded.String()
}

// visualColumn converts a one-based byte column into the zero-based screen
// column, expanding tabs.
func visualColumn(line string, column int) int {
	visual := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}
