package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "bmp": true, "webp": true,
}

// numberedStem matches filenames already renamed to the NNN pattern.
var numberedStem = regexp.MustCompile(`^\d{3}$`)

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// IsImageFile reports whether the filename carries a supported image
// extension.
func IsImageFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return imageExts[ext]
}

// ListImageFiles returns the image files under dir in walk order. With
// recursive false only the top level is scanned.
func ListImageFiles(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// OutputPath maps an input file to its destination under outputDir,
// mirroring the input-relative directory layout and keeping the source
// extension.
func OutputPath(inputPath, inputDir, outputDir string) (string, error) {
	rel, err := filepath.Rel(inputDir, inputPath)
	if err != nil {
		return "", fmt.Errorf("utils: relativize %s: %w", inputPath, err)
	}
	return filepath.Join(outputDir, rel), nil
}

// CaptionPath returns the sidecar text path for an image.
func CaptionPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
}

// RenameSequential renames the image files directly under dir to
// 001.ext, 002.ext, ... in lexicographic order. Files whose stem is
// already a 3-digit number keep their slot; new files take the lowest
// free numbers. Returns the renamed count.
func RenameSequential(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("utils: read dir %s: %w", dir, err)
	}

	taken := map[string]bool{}
	var toRename []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if numberedStem.MatchString(stem) {
			taken[stem] = true
			continue
		}
		toRename = append(toRename, e.Name())
	}
	sort.Strings(toRename)

	renamed := 0
	next := 1
	for _, name := range toRename {
		var stem string
		for {
			stem = fmt.Sprintf("%03d", next)
			next++
			if !taken[stem] {
				break
			}
		}
		taken[stem] = true

		ext := strings.ToLower(filepath.Ext(name))
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, stem+ext)); err != nil {
			return renamed, fmt.Errorf("utils: rename %s: %w", name, err)
		}
		renamed++
	}
	return renamed, nil
}

// FileExists checks if a file exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}
