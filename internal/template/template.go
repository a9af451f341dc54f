// Package template rewrites placeholder tokens and prunes unused languages
// in a freshly cloned project.
package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/waabox/sitekit/internal/domain"
)

// Placeholder tokens recognized in template files.
const (
	TokenProjectName     = "__PROJECT_NAME__"
	TokenProjectSlug     = "__PROJECT_SLUG__"
	TokenLanguages       = "__LANGUAGES__"
	TokenDefaultLanguage = "__DEFAULT_LANGUAGE__"
)

// sniffLen is how much of a file is inspected for NUL bytes before treating it as binary.
const sniffLen = 8 << 10

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Values returns the replacement table for project.
func Values(project domain.Project) map[string]string {
	return map[string]string{
		TokenProjectName:     project.Name,
		TokenProjectSlug:     project.Slug,
		TokenLanguages:       strings.Join(project.Languages, ","),
		TokenDefaultLanguage: project.DefaultLanguage(),
	}
}

// Rewrite replaces every token in values within the regular text files below dir.
// It returns the number of files changed. File modes are preserved.
func Rewrite(dir string, values map[string]string) (int, error) {
	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		pairs = append(pairs, token, value)
	}
	replacer := strings.NewReplacer(pairs...)

	changed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if isBinary(data) {
			return nil
		}
		updated := replacer.Replace(string(data))
		if updated == string(data) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		changed++
		return nil
	})
	if err != nil {
		return changed, err
	}
	return changed, nil
}

func isBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// PruneLanguages removes every entry of <dir>/<localesDir> whose name (without
// extension) is not in keep. It is a no-op when keep is empty or the locales
// directory does not exist. Returns the removed entry names.
func PruneLanguages(dir, localesDir string, keep []string) ([]string, error) {
	if len(keep) == 0 {
		return nil, nil
	}
	root := filepath.Join(dir, localesDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	wanted := make(map[string]bool, len(keep))
	for _, lang := range keep {
		wanted[strings.ToLower(lang)] = true
	}

	var removed []string
	for _, e := range entries {
		code := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if wanted[code] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}
