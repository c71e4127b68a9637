package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type replacement struct {
	wrong string
	re    *regexp.Regexp
	right string
}

// Corrector rewrites known speech-recognition mistakes in subtitle text.
type Corrector struct {
	rules []replacement
}

// LoadDictionary reads "wrong right" pairs, one per line. Blank lines and
// lines starting with # are ignored, "_" stands for a space, and a repeated
// key overrides the earlier one.
func LoadDictionary(r io.Reader, log *slog.Logger) (*Corrector, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	mapping := map[string]string{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		wrong := strings.ReplaceAll(fields[0], "_", " ")
		right := strings.ReplaceAll(strings.Join(fields[1:], " "), "_", " ")
		if prev, ok := mapping[wrong]; ok && prev != right {
			log.Warn("correction dictionary overrides entry", "line", lineNo, "key", wrong, "was", prev, "now", right)
		}
		mapping[wrong] = right
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return NewCorrector(mapping), nil
}

// NewCorrector applies longer keys first so a phrase wins over its parts.
func NewCorrector(mapping map[string]string) *Corrector {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	c := &Corrector{}
	for _, k := range keys {
		c.rules = append(c.rules, replacement{
			wrong: k,
			re:    regexp.MustCompile("(?i)" + regexp.QuoteMeta(k)),
			right: mapping[k],
		})
	}
	return c
}

func (c *Corrector) Len() int { return len(c.rules) }

// Correct returns the corrected text and the number of replacements made.
func (c *Corrector) Correct(text string) (string, int) {
	total := 0
	for _, r := range c.rules {
		n := len(r.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		text = r.re.ReplaceAllLiteralString(text, r.right)
		total += n
	}
	return text, total
}

// CorrectDir rewrites every .srt and .txt file directly inside dir, skipping
// the file at skip (usually the dictionary itself). It returns how many files
// were changed.
func (c *Corrector) CorrectDir(dir, skip string, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}
	skipAbs, _ := filepath.Abs(skip)
	changed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".srt" && ext != ".txt" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if abs, _ := filepath.Abs(path); skip != "" && abs == skipAbs {
			continue
		}
		n, err := c.correctFile(path)
		if err != nil {
			return changed, err
		}
		if n > 0 {
			changed++
			log.Info("corrected subtitle file", "file", e.Name(), "replacements", n)
		}
	}
	return changed, nil
}

func (c *Corrector) correctFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	out, n := c.Correct(string(raw))
	if n == 0 {
		return 0, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}
