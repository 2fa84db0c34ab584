package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/orderparse/internal/metrics"
	"github.com/ppiankov/orderparse/internal/model"
)

// Parser parses one order file
type Parser interface {
	ParseFile(ctx context.Context, path string) (*model.Report, error)
}

// ParseJob parses one file of a batch
type ParseJob struct {
	Index  int
	Path   string
	Parser Parser
}

// Execute runs the parse
func (j *ParseJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Parser.ParseFile(ctx, j.Path)
	return &FileResult{
		Index:   j.Index,
		Path:    j.Path,
		Report:  report,
		Error:   err,
		Elapsed: time.Since(start),
	}
}

// FileResult is the outcome of one ParseJob
type FileResult struct {
	Index   int
	Path    string
	Report  *model.Report
	Error   error
	Elapsed time.Duration
}

// GetError returns the parse error, if any
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchSummary counts batch outcomes
type BatchSummary struct {
	Files       int
	Parsed      int
	Failed      int
	NeedsReview int
	Cached      int
}

// Summarize counts outcomes over results
func Summarize(results []*FileResult) BatchSummary {
	s := BatchSummary{Files: len(results)}
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
			continue
		}
		s.Parsed++
		if r.Report.Review.NeedsReview {
			s.NeedsReview++
		}
		if r.Report.Cached {
			s.Cached++
		}
	}
	return s
}

// BatchProcessor parses many files concurrently through one Parser, so
// every file resolves against the same catalog snapshot.
type BatchProcessor struct {
	parser      Parser
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Registry
}

// NewBatchProcessor creates a batch processor. logger and reg may be nil.
func NewBatchProcessor(parser Parser, concurrency int, logger *slog.Logger, reg *metrics.Registry) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
		logger:      logger,
		metrics:     reg,
	}
}

// ProcessFiles parses every path and returns results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}
	start := time.Now()

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &ParseJob{Index: i, Path: path, Parser: b.parser}
	}

	results := Run(ctx, b.concurrency, jobs)

	fileResults := make([]*FileResult, 0, len(results))
	for _, result := range results {
		fr := result.(*FileResult)
		b.record(fr)
		fileResults = append(fileResults, fr)
	}
	sort.Slice(fileResults, func(i, j int) bool {
		return fileResults[i].Index < fileResults[j].Index
	})

	summary := Summarize(fileResults)
	b.logger.Info("batch.done",
		"files", len(paths),
		"parsed", summary.Parsed,
		"failed", summary.Failed,
		"needs_review", summary.NeedsReview,
		"skipped", len(paths)-len(fileResults),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fileResults
}

// ProcessTarget parses a directory of order files or a list file
func (b *BatchProcessor) ProcessTarget(ctx context.Context, target string) ([]*FileResult, error) {
	paths, err := CollectPaths(target)
	if err != nil {
		return nil, err
	}
	return b.ProcessFiles(ctx, paths), nil
}

func (b *BatchProcessor) record(r *FileResult) {
	outcome := "ok"
	switch {
	case r.Error != nil:
		outcome = "error"
		b.logger.Warn("batch.file.error", "path", r.Path, "error", r.Error)
	case r.Report.Review.NeedsReview:
		outcome = "review"
	}
	if b.metrics != nil {
		b.metrics.BatchFiles.WithLabelValues(outcome).Inc()
	}
}

// orderExts are the file types picked up from a batch directory
var orderExts = map[string]bool{
	".txt":  true,
	".text": true,
	".html": true,
	".htm":  true,
	".eml":  true,
}

// CollectPaths expands a batch target: a directory yields its order files
// (non-recursive, sorted); any other file is read as a list of paths.
func CollectPaths(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat target: %w", err)
	}
	if !info.IsDir() {
		return ReadPathsFromFile(target)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if orderExts[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(target, e.Name()))
		}
	}
	return paths, nil
}

// ReadPathsFromFile reads order file paths (one per line). Relative paths
// are taken relative to the list file.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
