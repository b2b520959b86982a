// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package pipeline runs the content-addressed extraction flow for uploaded
// documents: validate, fingerprint, cached text extraction, cached model
// analysis, artifact materialization, history append. Files in a batch are
// processed one at a time in submission order.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clinsight/internal/cache"
	"github.com/clinsight/internal/extractor"
	"github.com/clinsight/internal/hashing"
	"github.com/clinsight/internal/history"
	"github.com/clinsight/internal/logger"
)

// ValidationError rejects an upload before any processing starts.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Extractor pulls text from PDF bytes.
type Extractor interface {
	Extract(data []byte, progress extractor.ProgressFunc) (string, error)
}

// Analyzer turns extracted text into the structured analysis table.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Materializer renders export artifacts from the analysis.
type Materializer interface {
	Build(sourceName, analysis string) (map[string][]byte, error)
}

// StatusFunc receives human-readable stage updates with a fraction
// complete. Advisory; may be nil.
type StatusFunc func(stage string, fraction float64)

// BatchStatusFunc is a StatusFunc that also names the file the update
// belongs to. Advisory; may be nil.
type BatchStatusFunc func(filename, stage string, fraction float64)

// Config bounds a processor.
type Config struct {
	MaxFileSize   int64
	MaxBatchFiles int
	CacheEntries  int
	AnalysisChars int
	UploadDir     string // empty disables upload persistence
}

// Processor owns the per-session pipeline state: the two memo tables and
// the history store handle.
type Processor struct {
	cfg          Config
	extractCache *cache.Memo
	analyzeCache *cache.Memo
	extractor    Extractor
	analyzer     Analyzer
	materializer Materializer
	store        *history.Store
}

// NewProcessor wires the pipeline together.
func NewProcessor(cfg Config, ext Extractor, an Analyzer, mat Materializer, store *history.Store) *Processor {
	return &Processor{
		cfg:          cfg,
		extractCache: cache.NewMemo(cfg.CacheEntries),
		analyzeCache: cache.NewMemo(cfg.CacheEntries),
		extractor:    ext,
		analyzer:     an,
		materializer: mat,
		store:        store,
	}
}

// Result is one successfully processed file.
type Result struct {
	Filename  string
	RecordID  string
	Analysis  string
	Artifacts map[string][]byte
}

// FileOutcome pairs a batch entry with its result or failure. A failure
// aborts only that file; the rest of the batch proceeds.
type FileOutcome struct {
	Filename string
	Result   *Result
	Err      error
}

// BatchItem is one uploaded file.
type BatchItem struct {
	Filename string
	Data     []byte
}

// BatchResult reports processed outcomes and the filenames deferred beyond
// the batch cap.
type BatchResult struct {
	Outcomes []FileOutcome
	Deferred []string
}

// SanitizeFilename keeps only characters from the output-path allow-list.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unnamed_file"
	}
	return b.String()
}

// ProcessBatch handles up to MaxBatchFiles sequentially in submission
// order; excess files are deferred, not processed. Each file's status
// updates are delivered with that file's name bound.
func (p *Processor) ProcessBatch(ctx context.Context, files []BatchItem, status BatchStatusFunc) BatchResult {
	var result BatchResult

	batch := files
	if len(batch) > p.cfg.MaxBatchFiles {
		batch = files[:p.cfg.MaxBatchFiles]
		for _, f := range files[p.cfg.MaxBatchFiles:] {
			result.Deferred = append(result.Deferred, f.Filename)
		}
		logger.Warnf("batch of %d files exceeds cap %d, deferring %d",
			len(files), p.cfg.MaxBatchFiles, len(result.Deferred))
	}

	for _, f := range batch {
		var fileStatus StatusFunc
		if status != nil {
			name := f.Filename
			fileStatus = func(stage string, fraction float64) {
				status(name, stage, fraction)
			}
		}
		res, err := p.ProcessFile(ctx, f.Filename, f.Data, fileStatus)
		if err != nil {
			logger.Errorf("processing %s failed: %v", f.Filename, err)
		}
		result.Outcomes = append(result.Outcomes, FileOutcome{
			Filename: f.Filename,
			Result:   res,
			Err:      err,
		})
	}

	return result
}

// ProcessFile runs the full pipeline for one file.
func (p *Processor) ProcessFile(ctx context.Context, filename string, data []byte, status StatusFunc) (*Result, error) {
	report := func(stage string, fraction float64) {
		if status != nil {
			status(stage, fraction)
		}
	}

	report("验证文件", 0.05)
	if err := p.validate(filename, data); err != nil {
		return nil, err
	}
	name := SanitizeFilename(filename)
	p.persistUpload(name, data)

	fileID := hashing.FileID(data)
	extractKey := hashing.CacheKey(data)

	report("提取文本", 0.25)
	fullText, err := p.extractCache.GetOrCompute(extractKey, func() (string, error) {
		return p.extractor.Extract(data, func(fraction float64) {
			// Extraction spans the 0.25..0.50 band of the run.
			report("提取文本", 0.25+0.25*fraction)
		})
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullText) == "" {
		return nil, &extractor.ExtractionError{Reason: "no usable text extracted"}
	}

	trimmed := truncateRunes(fullText, p.cfg.AnalysisChars)
	analyzeKey := hashing.TextCacheKey(trimmed)

	report("分析内容", 0.5)
	analysis, err := p.analyzeCache.GetOrCompute(analyzeKey, func() (string, error) {
		return p.analyzer.Analyze(ctx, trimmed)
	})
	if err != nil {
		return nil, err
	}

	report("生成报告", 0.75)
	artifacts, err := p.materializer.Build(name, analysis)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	record := p.store.NewRecord(name, fileID, strings.TrimSpace(analysis), artifacts)
	if !p.store.Append(record) {
		// Persistence failures never block report delivery.
		logger.Warnf("history save failed for %s, record kept in memory only", name)
	}

	report("处理完成", 1.0)
	return &Result{
		Filename:  name,
		RecordID:  record.ID,
		Analysis:  record.Analysis,
		Artifacts: artifacts,
	}, nil
}

func (p *Processor) validate(filename string, data []byte) error {
	if int64(len(data)) > p.cfg.MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("文件大小超过限制（200MB）：%s", filename)}
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return &ValidationError{Reason: fmt.Sprintf("只支持PDF文件：%s", filename)}
	}
	return nil
}

// persistUpload keeps a copy of the validated upload on disk. Best-effort;
// the pipeline does not depend on it.
func (p *Processor) persistUpload(name string, data []byte) {
	if p.cfg.UploadDir == "" {
		return
	}
	if err := os.MkdirAll(p.cfg.UploadDir, 0755); err != nil {
		logger.Warnf("failed to create upload dir: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(p.cfg.UploadDir, name), data, 0644); err != nil {
		logger.Warnf("failed to persist upload %s: %v", name, err)
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
