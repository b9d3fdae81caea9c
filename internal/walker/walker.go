// Package walker discovers source files under a cloned repository root.
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string // absolute path on disk
	RelPath string // slash-separated path relative to the repository root
	Size    int64
}

// maxFileSize is the largest file we'll consider (1 MB).
const maxFileSize = 1 << 20

// skipDirs are directories that never contain code worth indexing.
var skipDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"node_modules":  true,
	".idea":         true,
	".vscode":       true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	"dist":          true,
	"build":         true,
}

// Walk traverses the directory tree rooted at root and returns every file
// whose extension is in allowedExts, in deterministic directory order.
// Symlinks, empty files, files over maxFileSize, and well-known junk
// directories are skipped. The walk is sequential: each analysis stage
// consumes the prior stage's complete output.
func Walk(root string, allowedExts map[string]bool) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		if d.IsDir() {
			if path != absRoot && (skipDirs[d.Name()] || strings.HasSuffix(d.Name(), ".egg-info")) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !allowedExts[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize || info.Size() == 0 {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)
		files = append(files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
