package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrCacheMiss is returned when the offline archive has nothing usable
var ErrCacheMiss = errors.New("no cached archive for this account (run without --offline first)")

const archiveCacheVersion = "1.0"

// CacheManager keeps an offline copy of the document archive: a YAML index of
// the last fetched list plus one normalized report file per document
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	Account      string    `yaml:"account"`
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// ArchiveIndexEntry is one document in the index
type ArchiveIndexEntry struct {
	ID        string `yaml:"id"`
	Filename  string `yaml:"filename"`
	Status    string `yaml:"status"`
	CreatedAt string `yaml:"created_at,omitempty"`
	RiskCount int    `yaml:"risk_count"`
	HasResult bool   `yaml:"has_result"`
}

// ArchiveIndex is the YAML index of cached documents
type ArchiveIndex struct {
	Documents []ArchiveIndexEntry `yaml:"documents"`
	Metadata  CacheMetadata       `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	if err := os.MkdirAll(cm.cacheDir, 0o755); err != nil {
		return &StorageError{Path: cm.cacheDir, Op: "mkdir", Err: err}
	}
	return nil
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the archive index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "archive.yaml")
}

// GetResultPath returns the path to a document's cached report
func (cm *CacheManager) GetResultPath(documentID string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("result_%s.json", safeFileComponent(documentID)))
}

// safeFileComponent keeps server ids from escaping the cache directory
func safeFileComponent(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r == ':' {
			return '_'
		}
		return r
	}, strings.ReplaceAll(id, "..", "_"))
}

// IsCacheValid reports whether the index exists and belongs to account
func (cm *CacheManager) IsCacheValid(account string) bool {
	index, err := cm.LoadIndex()
	if err != nil {
		return false
	}
	return account != "" && index.Metadata.Account == account &&
		index.Metadata.CacheVersion == archiveCacheVersion
}

// LoadIndex loads the archive index
func (cm *CacheManager) LoadIndex() (*ArchiveIndex, error) {
	indexPath := cm.GetIndexPath()
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}

	var index ArchiveIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &ParseError{Source: "cache", Key: indexPath, Err: err}
	}

	return &index, nil
}

// SaveIndex saves the archive index
func (cm *CacheManager) SaveIndex(index *ArchiveIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	indexPath := cm.GetIndexPath()
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return &StorageError{Path: indexPath, Op: "write", Err: err}
	}
	return nil
}

// indexFor returns the account's index, starting fresh when the cache belongs
// to someone else
func (cm *CacheManager) indexFor(account string) (*ArchiveIndex, error) {
	if cm.IsCacheValid(account) {
		return cm.LoadIndex()
	}
	if err := cm.ClearCache(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &ArchiveIndex{
		Documents: make([]ArchiveIndexEntry, 0),
		Metadata: CacheMetadata{
			Account:      account,
			CacheVersion: archiveCacheVersion,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}, nil
}

// SaveDocuments replaces the cached document list. Reports for documents that
// are no longer listed are removed.
func (cm *CacheManager) SaveDocuments(account string, docs []Document) error {
	index, err := cm.indexFor(account)
	if err != nil {
		return err
	}

	hadResult := make(map[string]bool, len(index.Documents))
	for _, entry := range index.Documents {
		hadResult[entry.ID] = entry.HasResult
	}

	listed := make(map[string]bool, len(docs))
	entries := make([]ArchiveIndexEntry, 0, len(docs))
	for _, doc := range docs {
		listed[doc.ID] = true
		entries = append(entries, ArchiveIndexEntry{
			ID:        doc.ID,
			Filename:  doc.Filename,
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
			RiskCount: doc.RiskCount,
			HasResult: hadResult[doc.ID],
		})
	}

	for id, has := range hadResult {
		if has && !listed[id] {
			_ = os.Remove(cm.GetResultPath(id))
		}
	}

	index.Documents = entries
	index.Metadata.UpdatedAt = time.Now()
	return cm.SaveIndex(index)
}

// LoadDocuments returns the cached document list for account
func (cm *CacheManager) LoadDocuments(account string) ([]Document, time.Time, error) {
	if !cm.IsCacheValid(account) {
		return nil, time.Time{}, ErrCacheMiss
	}
	index, err := cm.LoadIndex()
	if err != nil {
		return nil, time.Time{}, err
	}

	docs := make([]Document, 0, len(index.Documents))
	for _, entry := range index.Documents {
		docs = append(docs, Document{
			ID:        entry.ID,
			Filename:  entry.Filename,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt,
			RiskCount: entry.RiskCount,
		})
	}
	return docs, index.Metadata.UpdatedAt, nil
}

// SaveReport stores a normalized report and marks it in the index
func (cm *CacheManager) SaveReport(account string, report *AnalysisReport) error {
	index, err := cm.indexFor(account)
	if err != nil {
		return err
	}

	resultPath := cm.GetResultPath(report.DocumentID)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(resultPath, data, 0o644); err != nil {
		return &StorageError{Path: resultPath, Op: "write", Err: err}
	}

	found := false
	for i := range index.Documents {
		if index.Documents[i].ID == report.DocumentID {
			index.Documents[i].HasResult = true
			found = true
			break
		}
	}
	if !found {
		index.Documents = append(index.Documents, ArchiveIndexEntry{
			ID:        report.DocumentID,
			Filename:  report.Filename,
			Status:    "done",
			HasResult: true,
		})
	}

	index.Metadata.UpdatedAt = time.Now()
	return cm.SaveIndex(index)
}

// LoadReport loads a cached report for account
func (cm *CacheManager) LoadReport(account, documentID string) (*AnalysisReport, error) {
	if !cm.IsCacheValid(account) {
		return nil, ErrCacheMiss
	}

	resultPath := cm.GetResultPath(documentID)
	data, err := os.ReadFile(resultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, &StorageError{Path: resultPath, Op: "read", Err: err}
	}

	var report AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &ParseError{Source: "cache", Key: resultPath, Err: err}
	}
	return &report, nil
}

// RemoveDocument drops one document from the index and deletes its report
func (cm *CacheManager) RemoveDocument(account, documentID string) error {
	if !cm.IsCacheValid(account) {
		return nil
	}
	index, err := cm.LoadIndex()
	if err != nil {
		return err
	}

	kept := index.Documents[:0]
	for _, entry := range index.Documents {
		if entry.ID != documentID {
			kept = append(kept, entry)
		}
	}
	index.Documents = kept
	_ = os.Remove(cm.GetResultPath(documentID))

	index.Metadata.UpdatedAt = time.Now()
	return cm.SaveIndex(index)
}

// ClearCache clears the cache
func (cm *CacheManager) ClearCache() error {
	indexPath := cm.GetIndexPath()

	// Load index to get all document IDs
	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Documents {
			_ = os.Remove(cm.GetResultPath(entry.ID))
		}
	}

	if err := os.Remove(indexPath); err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: indexPath, Op: "delete", Err: err}
	}

	return nil
}
