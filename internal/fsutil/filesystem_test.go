package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateAndOpen(t *testing.T) {
	fsys := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "flatfile.csv")

	w, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := io.WriteString(w, "mag,freq1.0\n6.5,0.1\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "mag,freq1.0\n6.5,0.1\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestMemoryFileSystem_CreateAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/residuals.csv")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("resid_freq1.000000\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Nothing is published until Close.
	if data, _ := mfs.ReadFile("/out/residuals.csv"); len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := mfs.ReadFile("/out/residuals.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "resid_freq1.000000\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.Put("/in.csv", []byte("abc"))

	f, err := mfs.Open("/in.csv")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 || info.Name() != "in.csv" {
		t.Errorf("unexpected info: name=%s size=%d", info.Name(), info.Size())
	}

	data, _ := io.ReadAll(f)
	if string(data) != "abc" {
		t.Errorf("expected abc, got %q", data)
	}
}

func TestMemoryFileSystem_OpenNonExistent(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Open("/missing.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	_, err = mfs.ReadFile("/missing.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	_, err = mfs.Stat("/missing.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/data/residuals/run1", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/data", "/data/residuals", "/data/residuals/run1"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
	}

	info, err := mfs.Stat("/data/residuals")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}
}

func TestMemoryFileSystem_PathCleaning(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.Put("/a/../b/./c.csv", []byte("x"))

	if !mfs.Exists("/b/c.csv") {
		t.Error("expected cleaned path to exist")
	}
}

func TestMemoryFileSystem_DataIsolation(t *testing.T) {
	mfs := NewMemoryFileSystem()
	src := []byte("original")
	mfs.Put("/f", src)
	src[0] = 'X'

	data, _ := mfs.ReadFile("/f")
	if string(data) != "original" {
		t.Errorf("stored data mutated through caller slice: %q", data)
	}
	data[0] = 'Y'
	again, _ := mfs.ReadFile("/f")
	if string(again) != "original" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.Put("/z.csv", nil)
	mfs.Put("/a.csv", nil)

	got := mfs.Files()
	if len(got) != 2 || got[0] != "/a.csv" || got[1] != "/z.csv" {
		t.Errorf("unexpected file list %v", got)
	}
}

func TestWriteFile_CreatesParentDir(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := WriteFile(mfs, "/data/residuals/out.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "ok")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !mfs.Exists("/data/residuals") {
		t.Error("expected parent directory to be created")
	}
	data, _ := mfs.ReadFile("/data/residuals/out.csv")
	if string(data) != "ok" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestWriteFile_PropagatesWriterError(t *testing.T) {
	mfs := NewMemoryFileSystem()
	boom := errors.New("boom")

	err := WriteFile(mfs, "out.csv", func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestWriteFile_OSFileSystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.csv")

	err := WriteFile(OSFileSystem{}, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected content %q", data)
	}
}
