package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidName(t *testing.T) {
	if !ValidName("trial-01.png") {
		t.Fatal("expected a normal filename to validate")
	}
	if ValidName("") {
		t.Fatal("empty name must be invalid")
	}
	if ValidName("has space.png") {
		t.Fatal("names with spaces must be invalid")
	}
	if ValidName("../escape") {
		t.Fatal("path traversal attempts must be invalid")
	}
}

func TestStoreFoldersAndFiles(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "setA"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "setA", "dot.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	folders, err := s.Folders()
	if err != nil || len(folders) != 1 || folders[0] != "setA" {
		t.Fatalf("Folders() = %v, %v", folders, err)
	}

	files, err := s.Files("setA")
	if err != nil || len(files) != 1 || files[0] != "dot.png" {
		t.Fatalf("Files() = %v, %v", files, err)
	}

	info, err := s.Info("setA", "dot.png")
	if err != nil || info.Size != 1 {
		t.Fatalf("Info() = %+v, %v", info, err)
	}
}

func TestStorePutFileRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, err := s.CreateFile("clips", "movie.mp4", 6)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := w.WriteChunk([]byte("abc")); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := w.WriteChunk([]byte("def")); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := w.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}
	info, err := s.Info("clips", "movie.mp4")
	if err != nil || info.Size != 6 {
		t.Fatalf("Info() after transfer = %+v, %v", info, err)
	}
}

func TestStorePutFileShortTransferErrors(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, err := s.CreateFile("clips", "short.mp4", 10)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	_ = w.WriteChunk([]byte("abc"))
	if err := w.Done(); err == nil {
		t.Fatal("expected Done to fail on a short transfer")
	}
}
