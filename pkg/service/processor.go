// Package service drives the full pipeline for local files: read, classify,
// merge per group, and write one workbook per group.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/merge"
	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/profile"
	"github.com/minhlq/saoke/pkg/reader"
	"github.com/minhlq/saoke/pkg/writer"
)

// Processor runs merges over files on disk.
type Processor struct {
	profiles *profile.Set
	merger   *merge.Merger
	logger   *log.Logger
}

// Report sums up one processing run for the caller to render.
type Report struct {
	Results      []*models.Result
	Written      []string
	Unclassified []merge.ClassifyError
	Failures     []merge.Failure
}

func NewProcessor(profiles *profile.Set, logger *log.Logger) *Processor {
	return &Processor{
		profiles: profiles,
		merger:   merge.New(profiles, logger),
		logger:   logger,
	}
}

// ProcessPaths reads every given file, groups them by bank and account,
// merges each group and writes the merged workbooks into outputDir.
func (p *Processor) ProcessPaths(paths []string, outputDir string) (*Report, error) {
	var docs []models.Document
	report := &Report{}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("unreadable file", "file", path, "err", err)
			report.Unclassified = append(report.Unclassified, merge.ClassifyError{
				Filename: filepath.Base(path), Reason: err.Error(),
			})
			continue
		}
		doc, err := reader.Read(data, filepath.Base(path))
		if err != nil {
			p.logger.Warn("unreadable file", "file", path, "err", err)
			report.Unclassified = append(report.Unclassified, merge.ClassifyError{
				Filename: filepath.Base(path), Reason: err.Error(),
			})
			continue
		}
		docs = append(docs, doc)
	}

	groups, classifyErrs := merge.GroupDocuments(p.profiles, docs, p.logger)
	report.Unclassified = append(report.Unclassified, classifyErrs...)

	results, failures := p.merger.Run(groups)
	report.Results = results
	report.Failures = failures

	for _, res := range results {
		path, err := writer.Save(outputDir, res)
		if err != nil {
			return report, fmt.Errorf("failed to write output for %s: %w", res.Key(), err)
		}
		report.Written = append(report.Written, path)
	}
	return report, nil
}

// ProcessDirectory processes every statement file directly inside dir.
func (p *Processor) ProcessDirectory(dir, outputDir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xlsx", ".xls", ".csv":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no statement files in %s", dir)
	}
	return p.ProcessPaths(paths, outputDir)
}
