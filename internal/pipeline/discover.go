package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/neurobids/bidsmapper/internal/source"
)

// Item is one source item: a series directory and the representative file
// whose attributes stand for the whole series.
type Item struct {
	Dir    string
	File   string
	Format string
}

// Discover walks sourceDir, groups candidate files by their parent
// directory (one series per directory), and picks the lexicographically
// first supported file of each as the series representative. Results are
// sorted by directory for deterministic processing order.
func Discover(sourceDir string, sources []source.Source) ([]Item, error) {
	byDir := make(map[string][]string)
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var items []Item
	for _, dir := range dirs {
		files := byDir[dir]
		sort.Strings(files)
		for _, f := range files {
			if _, format, ok := source.Detect(sources, f); ok {
				items = append(items, Item{Dir: dir, File: f, Format: format})
				break
			}
		}
	}
	return items, nil
}
