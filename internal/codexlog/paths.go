package codexlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// collectSessionFiles walks the year/month/day layout under root and returns
// every .jsonl path, sorted. A missing root yields an empty slice; an
// unreadable intermediate directory is skipped. Only a genuine error at the
// root (permission denied, not "not found") is reported.
func collectSessionFiles(root string) ([]string, error) {
	years, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var files []string
	for _, year := range years {
		if !year.IsDir() || !isDigits(year.Name()) {
			continue
		}
		yearPath := filepath.Join(root, year.Name())
		months, err := os.ReadDir(yearPath)
		if err != nil {
			continue
		}
		for _, month := range months {
			if !month.IsDir() || !isDigits(month.Name()) {
				continue
			}
			monthPath := filepath.Join(yearPath, month.Name())
			days, err := os.ReadDir(monthPath)
			if err != nil {
				continue
			}
			for _, day := range days {
				if !day.IsDir() || !isDigits(day.Name()) {
					continue
				}
				dayPath := filepath.Join(monthPath, day.Name())
				entries, err := os.ReadDir(dayPath)
				if err != nil {
					continue
				}
				for _, e := range entries {
					if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
						continue
					}
					files = append(files, filepath.Join(dayPath, e.Name()))
				}
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// newestSessionFile returns the lexicographically last .jsonl file in the
// most recent non-empty day directory, scanning year, month and day names in
// descending order. Returns "" when nothing is found.
func newestSessionFile(root string) string {
	for _, year := range readDirNamesDesc(root) {
		yearPath := filepath.Join(root, year)
		for _, month := range readDirNamesDesc(yearPath) {
			monthPath := filepath.Join(yearPath, month)
			for _, day := range readDirNamesDesc(monthPath) {
				dayPath := filepath.Join(monthPath, day)
				entries, err := os.ReadDir(dayPath)
				if err != nil {
					continue
				}
				best := ""
				for _, e := range entries {
					if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
						continue
					}
					if e.Name() > best {
						best = e.Name()
					}
				}
				if best != "" {
					return filepath.Join(dayPath, best)
				}
			}
		}
	}
	return ""
}

func readDirNamesDesc(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && isDigits(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sessionIDFromFilename extracts the session UUID from a session filename
// such as rollout-2026-02-11T15-52-56-019c4bb0-5fdb-7352-9b9c-9efe77d2d60d.jsonl.
// The UUID is the last 36 characters of the stem; returns "" when the name
// does not end in one.
func sessionIDFromFilename(name string) string {
	name = strings.TrimSuffix(name, ".jsonl")
	if len(name) < 36 {
		return ""
	}
	candidate := name[len(name)-36:]
	if candidate[8] == '-' && candidate[13] == '-' &&
		candidate[18] == '-' && candidate[23] == '-' {
		return candidate
	}
	return ""
}

// firstNonBlankLine reads path until the first line with content and returns
// it. io errors and empty files both come back as (nil, err)/(nil, nil).
func firstNonBlankLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
	}
}

func isFile(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
