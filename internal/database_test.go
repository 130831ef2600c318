package internal

import (
	"path/filepath"
	"testing"

	"github.com/iksnae/readgye-cli/testutil"
	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDatabase_CreatesFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "nested", "readgye.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}

	if err := SetValue(db, "k", "v"); err != nil {
		db.Close()
		t.Fatalf("SetValue() error = %v", err)
	}
	db.Close()

	reopened, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() reopen error = %v", err)
	}
	defer reopened.Close()

	got, ok, err := GetValue(reopened, "k")
	if err != nil || !ok || got != "v" {
		t.Errorf("GetValue() after reopen = %q, %v, %v; want v, true, nil", got, ok, err)
	}
}

func TestKVRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := GetValue(db, "missing"); err != nil || ok {
		t.Errorf("GetValue(missing) ok = %v, err = %v; want false, nil", ok, err)
	}

	if err := SetValue(db, "a", "1"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if err := SetValue(db, "a", "2"); err != nil {
		t.Fatalf("SetValue() overwrite error = %v", err)
	}
	if err := SetValue(db, "b", "3"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	got, ok, err := GetValue(db, "a")
	if err != nil || !ok || got != "2" {
		t.Errorf("GetValue(a) = %q, %v, %v; want 2, true, nil", got, ok, err)
	}

	pairs, err := ListValues(db)
	if err != nil {
		t.Fatalf("ListValues() error = %v", err)
	}
	if len(pairs) != 2 || pairs[0].Key != "a" || pairs[1].Key != "b" {
		t.Errorf("ListValues() = %+v, want keys a, b", pairs)
	}
	if pairs[0].GetUpdatedAt().IsZero() {
		t.Error("UpdatedAt should be set")
	}

	if err := DeleteValues(db, "a", "b", "never-set"); err != nil {
		t.Fatalf("DeleteValues() error = %v", err)
	}
	pairs, err = ListValues(db)
	if err != nil {
		t.Fatalf("ListValues() error = %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("ListValues() after delete = %+v, want empty", pairs)
	}
}

func TestOpenDatabase_ExistingStore(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "readgye.db")
	testutil.CreateKVFixture(t, path, map[string]string{
		KeyUser:  `{"id":"7","name":"김철수","email":"kim@example.com","is_admin":true}`,
		KeyToken: "stored-token",
	})

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	session, err := NewSessionStore(db, path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !session.LoggedIn() || session.User.Email != "kim@example.com" || !session.User.IsAdmin {
		t.Errorf("Load() user = %+v, want the fixture user", session.User)
	}
	if session.Token != "stored-token" {
		t.Errorf("Load() token = %q, want stored-token", session.Token)
	}
}
