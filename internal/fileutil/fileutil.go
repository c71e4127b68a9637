// Package fileutil finds broadcast inputs and manages clip output folders.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var (
	VideoExts    = []string{".mp4", ".flv", ".mkv", ".mov", ".ts"}
	ImageExts    = []string{".jpg", ".jpeg", ".png"}
	ChatExts     = []string{".ass", ".bin"}
	SubtitleExts = []string{".srt"}
)

var ErrNotFound = errors.New("no matching file")

// AmbiguousError is returned when a folder holds more than one candidate.
type AmbiguousError struct {
	Dir   string
	Names []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d matching files in %s, keep exactly one: %s", len(e.Names), e.Dir, strings.Join(e.Names, ", "))
}

// FindUnique returns the single regular file directly inside dir whose
// extension (case-insensitive) is one of exts.
func FindUnique(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%s in %s: %w", strings.Join(exts, "/"), dir, ErrNotFound)
	case 1:
		return filepath.Join(dir, names[0]), nil
	default:
		return "", &AmbiguousError{Dir: dir, Names: names}
	}
}

// FindOptional is FindUnique where a missing file is not an error; it returns
// an empty path instead.
func FindOptional(dir string, exts ...string) (string, error) {
	p, err := FindUnique(dir, exts...)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return p, err
}

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeFilename replaces characters that are invalid in file names on
// common filesystems.
func SanitizeFilename(name string) string {
	safe := strings.TrimSpace(unsafeChars.ReplaceAllString(name, "_"))
	if safe == "" {
		return "clip"
	}
	return safe
}

// ClipDirName is the NN_title folder name for a 1-based clip index among
// total clips. The number is zero-padded to at least two digits.
func ClipDirName(index, total int, title string) string {
	width := max(2, len(fmt.Sprint(total)))
	return fmt.Sprintf("%0*d_%s", width, index, SanitizeFilename(title))
}

// CleanOutputDir removes rendered videos, and images when includeImages is
// set, from dir. Subtitle files are kept. A missing dir is not an error.
func CleanOutputDir(dir string, includeImages bool) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.Contains(VideoExts, ext) || (includeImages && slices.Contains(ImageExts, ext)) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

const SourceMetaFile = "_source_meta.json"

// SourceMeta records which broadcast files an output folder was cut from.
type SourceMeta struct {
	SourceVideo string `json:"source_video"`
	SRTFile     string `json:"srt_file"`
}

func WriteSourceMeta(dir string, meta SourceMeta) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SourceMetaFile), b, 0o644)
}

// LoadSourceMeta looks for SourceMetaFile in start and then each parent
// directory, returning the first one found.
func LoadSourceMeta(start string) (SourceMeta, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return SourceMeta{}, err
	}
	for {
		b, err := os.ReadFile(filepath.Join(dir, SourceMetaFile))
		if err == nil {
			var meta SourceMeta
			if err := json.Unmarshal(b, &meta); err != nil {
				return SourceMeta{}, fmt.Errorf("parse %s: %w", filepath.Join(dir, SourceMetaFile), err)
			}
			return meta, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return SourceMeta{}, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return SourceMeta{}, fmt.Errorf("%s above %s: %w", SourceMetaFile, start, ErrNotFound)
		}
		dir = parent
	}
}
