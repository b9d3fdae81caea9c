package walker

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkFindsPythonFiles(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", "def main(): pass\n")
	write(t, root, "pkg/util.py", "def util(): pass\n")
	write(t, root, "README.md", "# readme\n")
	write(t, root, "__pycache__/main.cpython-311.pyc", "binary")
	write(t, root, ".git/config", "[core]")
	write(t, root, "venv/lib/site.py", "ignored")
	write(t, root, "empty.py", "")
	write(t, root, "pkg.egg-info/meta.py", "ignored")

	files, err := Walk(root, map[string]bool{"py": true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.RelPath] = true
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(files), got)
	}
	for _, want := range []string{"main.py", "pkg/util.py"} {
		if !got[want] {
			t.Errorf("missing %s", want)
		}
	}
}

func TestWalkSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, maxFileSize+1)
	for i := range big {
		big[i] = 'x'
	}
	write(t, root, "big.py", string(big))
	write(t, root, "ok.py", "def f(): pass\n")

	files, err := Walk(root, map[string]bool{"py": true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "ok.py" {
		t.Errorf("got %v, want only ok.py", files)
	}
}
