package decl

import "time"

// CacheMetadata is scan bookkeeping. Nothing reads it for correctness.
type CacheMetadata struct {
	ProjectName        string        `json:"projectName"`
	LastScanID         string        `json:"lastScanId,omitempty"`
	LastFullScan       time.Time     `json:"lastFullScan,omitempty"`
	LastIncremental    time.Time     `json:"lastIncremental,omitempty"`
	LastScanDuration   time.Duration `json:"lastScanDuration,omitempty"`
	FullScans          int           `json:"fullScans"`
	IncrementalUpdates int           `json:"incrementalUpdates"`
	FilesInvalidated   int           `json:"filesInvalidated"`
	FilesRemoved       int           `json:"filesRemoved"`
	FileCount          int           `json:"fileCount"`
	IdentifierCount    int           `json:"identifierCount"`
}
