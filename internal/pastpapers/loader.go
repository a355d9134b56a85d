package pastpapers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// LoadDir walks root and loads every past paper it can read: YAML files
// (one Paper per file) and XLSX workbooks (one Paper per workbook, first
// sheet, columns question|marks|bloom_level|topic). Unreadable files are
// skipped with a warning so one bad upload never blocks analysis.
func LoadDir(root string) ([]Paper, error) {
	var papers []Paper
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		var (
			paper   Paper
			loadErr error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paper, loadErr = LoadYAML(path)
		case ".xlsx":
			paper, loadErr = LoadXLSX(path)
		default:
			return nil
		}
		if loadErr != nil {
			slog.Warn("skipping unreadable past paper", "path", path, "error", loadErr)
			return nil
		}
		papers = append(papers, paper)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return papers, nil
}

// LoadYAML reads a single past paper from a YAML file.
func LoadYAML(path string) (Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Paper{}, err
	}
	var paper Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return Paper{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if paper.Name == "" {
		paper.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return paper, nil
}

// LoadXLSX reads a past paper from the first sheet of an XLSX workbook.
// The header row names the columns; unknown columns are ignored.
func LoadXLSX(path string) (Paper, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Paper{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Paper{}, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Paper{}, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return Paper{}, fmt.Errorf("%s has no question rows", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	textCol, ok := cols["question"]
	if !ok {
		return Paper{}, fmt.Errorf("%s missing question column", path)
	}

	paper := Paper{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for _, row := range rows[1:] {
		q := Question{Text: cell(row, textCol)}
		if q.Text == "" {
			continue
		}
		if i, ok := cols["marks"]; ok {
			q.Marks, _ = strconv.Atoi(cell(row, i))
		}
		if i, ok := cols["bloom_level"]; ok {
			q.Level = strings.ToLower(cell(row, i))
		}
		if i, ok := cols["topic"]; ok {
			q.Topic = cell(row, i)
		}
		paper.Questions = append(paper.Questions, q)
	}
	return paper, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
