package app

import "path/filepath"

// Output layout under Config.OutDir:
//
//	raw/{topic}.{ext}        canonical records per topic
//	processed/{name}.{ext}   cleaned tables and analytics
//	report.pdf               optional summary
//	manifest.json            run manifest
const (
	rawSubdir       = "raw"
	processedSubdir = "processed"
	reportFile      = "report.pdf"
	manifestFile    = "manifest.json"
)

func rawDir(cfg Config) string       { return filepath.Join(cfg.OutDir, rawSubdir) }
func processedDir(cfg Config) string { return filepath.Join(cfg.OutDir, processedSubdir) }
func reportPath(cfg Config) string   { return filepath.Join(cfg.OutDir, reportFile) }
func manifestPath(cfg Config) string { return filepath.Join(cfg.OutDir, manifestFile) }
