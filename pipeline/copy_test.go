package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyRenamed(t *testing.T) {
	dir := t.TempDir()
	data := []byte("%PDF-1.4 original bytes")
	f := MemFile{FileName: "scan.pdf", Type: PDFMediaType, Data: data}
	res := Success("scan.pdf", "Annual Report 2023")

	want := []string{
		"Annual Report 2023.pdf",
		"Annual Report 2023 (1).pdf",
		"Annual Report 2023 (2).pdf",
	}
	for _, name := range want {
		path, err := CopyRenamed(context.Background(), f, dir, res)
		if err != nil {
			t.Fatalf("CopyRenamed: %v", err)
		}
		if filepath.Base(path) != name {
			t.Errorf("path = %s, want %s", filepath.Base(path), name)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("bytes changed in %s", path)
		}
	}
}

func TestCopyRenamedRejectsNonSuccess(t *testing.T) {
	f := MemFile{FileName: "notes.txt", Type: "text/plain"}
	if _, err := CopyRenamed(context.Background(), f, t.TempDir(), Skipped("notes.txt", ReasonNotPDF)); err == nil {
		t.Error("expected error for skipped result")
	}
}
