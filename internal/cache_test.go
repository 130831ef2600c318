package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/readgye-cli/testutil"
)

func TestCacheManager_Paths(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	cm := NewCacheManager(cacheDir)

	if got, want := cm.GetIndexPath(), filepath.Join(cacheDir, "archive.yaml"); got != want {
		t.Errorf("GetIndexPath() = %q, want %q", got, want)
	}

	tests := []struct {
		id   string
		want string
	}{
		{"42", "result_42.json"},
		{"../etc/passwd", "result___etc_passwd.json"},
		{"a/b", "result_a_b.json"},
	}
	for _, tt := range tests {
		got := cm.GetResultPath(tt.id)
		if got != filepath.Join(cacheDir, tt.want) {
			t.Errorf("GetResultPath(%q) = %q, want %q", tt.id, got, tt.want)
		}
		if filepath.Dir(got) != cacheDir {
			t.Errorf("GetResultPath(%q) escapes the cache dir", tt.id)
		}
	}
}

func TestCacheManager_IsCacheValid(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	cm := NewCacheManager(cacheDir)

	if cm.IsCacheValid("a@example.com") {
		t.Error("IsCacheValid() = true with no index")
	}

	if err := cm.SaveDocuments("a@example.com", nil); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}

	tests := []struct {
		account string
		want    bool
	}{
		{"a@example.com", true},
		{"b@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cm.IsCacheValid(tt.account); got != tt.want {
			t.Errorf("IsCacheValid(%q) = %v, want %v", tt.account, got, tt.want)
		}
	}
}

func TestCacheManager_SaveAndLoadDocuments(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))
	docs := []Document{
		{ID: "2", Filename: "임대차계약서.pdf", Status: "done", RiskCount: 2, CreatedAt: "2025-01-02T10:00:00"},
		{ID: "1", Filename: "근로계약서.pdf", Status: "processing"},
	}

	if err := cm.SaveDocuments("a@example.com", docs); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}

	loaded, updatedAt, err := cm.LoadDocuments("a@example.com")
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadDocuments() returned %d documents, want 2", len(loaded))
	}
	if loaded[0] != docs[0] || loaded[1] != docs[1] {
		t.Errorf("LoadDocuments() = %+v, want %+v", loaded, docs)
	}
	if updatedAt.IsZero() {
		t.Error("LoadDocuments() updatedAt should be set")
	}

	if _, _, err := cm.LoadDocuments("b@example.com"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("LoadDocuments() for another account error = %v, want ErrCacheMiss", err)
	}
}

func TestCacheManager_Reports(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))
	const account = "a@example.com"

	if err := cm.SaveDocuments(account, []Document{{ID: "7", Filename: "용역계약서.pdf", Status: "done"}}); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}

	report := &AnalysisReport{
		DocumentID: "7",
		Filename:   "용역계약서.pdf",
		Items: []AnalysisItem{
			{ClauseNumber: "제3조", Title: "지적재산권 귀속", RiskLevel: RiskHigh, Summary: "발주처에 귀속", Suggestion: "포트폴리오 사용권 유보"},
		},
	}
	if err := cm.SaveReport(account, report); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	loaded, err := cm.LoadReport(account, "7")
	if err != nil {
		t.Fatalf("LoadReport() error = %v", err)
	}
	if loaded.Filename != report.Filename || len(loaded.Items) != 1 || loaded.Items[0] != report.Items[0] {
		t.Errorf("LoadReport() = %+v, want %+v", loaded, report)
	}

	index, err := cm.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if !index.Documents[0].HasResult {
		t.Error("index entry should be marked HasResult after SaveReport")
	}

	// Relisting keeps the flag for documents still present
	if err := cm.SaveDocuments(account, []Document{{ID: "7", Filename: "용역계약서.pdf", Status: "done"}}); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}
	index, _ = cm.LoadIndex()
	if !index.Documents[0].HasResult {
		t.Error("HasResult lost after relisting")
	}

	if _, err := cm.LoadReport(account, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("LoadReport(missing) error = %v, want ErrCacheMiss", err)
	}
}

func TestCacheManager_PrunesAndSwitchesAccount(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))

	_ = cm.SaveDocuments("a@example.com", []Document{{ID: "1"}, {ID: "2"}})
	_ = cm.SaveReport("a@example.com", &AnalysisReport{DocumentID: "1"})
	_ = cm.SaveReport("a@example.com", &AnalysisReport{DocumentID: "2"})

	if err := cm.SaveDocuments("a@example.com", []Document{{ID: "2"}}); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}
	if _, err := os.Stat(cm.GetResultPath("1")); !os.IsNotExist(err) {
		t.Error("report for an unlisted document should be pruned")
	}

	if err := cm.SaveDocuments("b@example.com", []Document{{ID: "9"}}); err != nil {
		t.Fatalf("SaveDocuments() error = %v", err)
	}
	if _, err := os.Stat(cm.GetResultPath("2")); !os.IsNotExist(err) {
		t.Error("another account's reports should be cleared")
	}
	if cm.IsCacheValid("a@example.com") {
		t.Error("cache should now belong to b@example.com")
	}
}

func TestCacheManager_RemoveDocument(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))
	const account = "a@example.com"

	_ = cm.SaveDocuments(account, []Document{{ID: "1"}, {ID: "2"}})
	_ = cm.SaveReport(account, &AnalysisReport{DocumentID: "1"})

	if err := cm.RemoveDocument(account, "1"); err != nil {
		t.Fatalf("RemoveDocument() error = %v", err)
	}
	docs, _, err := cm.LoadDocuments(account)
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "2" {
		t.Errorf("LoadDocuments() after remove = %+v, want only document 2", docs)
	}
	if _, err := os.Stat(cm.GetResultPath("1")); !os.IsNotExist(err) {
		t.Error("RemoveDocument() should delete the cached report")
	}
}

func TestCacheManager_ClearCache(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))
	_ = cm.SaveReport("a@example.com", &AnalysisReport{DocumentID: "1"})

	if err := cm.ClearCache(); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}
	if _, err := os.Stat(cm.GetIndexPath()); !os.IsNotExist(err) {
		t.Error("index should be removed")
	}
	if _, err := os.Stat(cm.GetResultPath("1")); !os.IsNotExist(err) {
		t.Error("report should be removed")
	}
	if err := cm.ClearCache(); err != nil {
		t.Errorf("ClearCache() on empty cache error = %v", err)
	}
}
