// Package report builds a run-level index of the per-artifact comparison
// summaries so a reviewer can scan one file instead of the whole directory.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/baseliner/internal/filelock"
)

// IndexFile is the name of the generated index, written into the summaries
// directory.
const IndexFile = "SUMMARY.md"

// summarySuffix identifies comparator output files.
const summarySuffix = "-report-summary.md"

// Entry is one indexed summary file.
type Entry struct {
	// File is the summary file name relative to the summaries directory.
	File string

	// Title is the first heading of the summary, or the file name when the
	// summary has no heading.
	Title string
}

// WriteIndex scans dir for comparison summaries and writes an index file
// listing each summary's title. Returns the indexed entries. An empty
// directory still produces an index so reruns always leave a fresh one.
func WriteIndex(dir string) ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+summarySuffix))
	if err != nil {
		return nil, fmt.Errorf("scan summaries directory: %w", err)
	}
	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))
	for _, path := range matches {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read summary %s: %w", path, err)
		}

		name := filepath.Base(path)
		title := firstHeading(source)
		if title == "" {
			title = name
		}
		entries = append(entries, Entry{File: name, Title: title})
	}

	if err := filelock.AtomicWrite(filepath.Join(dir, IndexFile), renderIndex(entries)); err != nil {
		return nil, fmt.Errorf("write summary index: %w", err)
	}
	return entries, nil
}

// firstHeading parses the markdown source and returns the text of its first
// heading, or "" when there is none.
func firstHeading(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = extractText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(title)
}

// extractText extracts plain text from an AST node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// renderIndex renders the index document.
func renderIndex(entries []Entry) []byte {
	var sb strings.Builder
	sb.WriteString("# Testsuite Comparison Summaries\n\n")
	if len(entries) == 0 {
		sb.WriteString("No comparison summaries were produced by this run.\n")
		return []byte(sb.String())
	}
	for _, entry := range entries {
		fmt.Fprintf(&sb, "- [%s](%s)\n", entry.Title, entry.File)
	}
	return []byte(sb.String())
}
