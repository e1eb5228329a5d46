package storage

import (
	"path/filepath"
	"testing"
)

type note struct {
	ID   uint
	Text string
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(Config{Path: MemoryPath}, &note{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Create(&note{Text: "hi"}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	var got note
	if err := db.First(&got).Error; err != nil || got.Text != "hi" {
		t.Errorf("First() = %+v, %v", got, err)
	}
}

func TestInitDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")
	if err := InitDB(Config{Path: path}, &note{}); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	if GetDB() == nil {
		t.Fatal("GetDB() returned nil after InitDB")
	}
	if err := Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if GetDB() != nil {
		t.Error("GetDB() should be nil after Close")
	}
}

func TestExpandPath(t *testing.T) {
	if got := expandPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("expandPath() = %q", got)
	}
	if got := expandPath("~/x.db"); got == "~/x.db" {
		t.Errorf("expandPath() did not expand home: %q", got)
	}
}
