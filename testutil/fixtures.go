package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// LegacyPythonSummary is an archived analysis stored as str(dict) by an old backend
const LegacyPythonSummary = `{'clauses': [{'clause_number': '제1조', 'title': '계약 기간', 'risk_level': 'LOW', 'summary': '1년 자동 갱신', 'suggestion': None}, {'article_number': '제7조', 'title': '손해배상', 'risk_level': 'HIGH', 'analysis': '배상 한도 없음', 'suggestion': '한도를 계약금액으로 제한'}], 'valid': True}`

// AnalysisResultJSON is a detail response mixing current and legacy items
const AnalysisResultJSON = `{
  "filename": "freelance.pdf",
  "analysis": [
    {"clause_number": "전체", "title": "", "risk_level": "UNKNOWN", "summary": "` + "{'clauses': [{'clause_number': '1', 'title': 'A', 'risk_level': 'HIGH'}]}" + `", "suggestion": ""},
    {"clause_number": "제3조", "title": "지적재산권 귀속", "risk_level": "MEDIUM", "summary": "저작권이 발주처에 귀속", "suggestion": "포트폴리오 사용권 명시"}
  ]
}`

// CreateKVFixture creates a readgye SQLite database holding the given key/value pairs
func CreateKVFixture(t *testing.T, dbPath string, pairs map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	stmt, err := db.Prepare("INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UnixMilli()
	for key, value := range pairs {
		if _, err := stmt.Exec(key, value, now); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}
