package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"moescrape/pkg/scraper"
)

// csvHeader is the fixed column order of the output file
var csvHeader = []string{"name", "comment", "date", "likes", "post_title", "post_link"}

// WriteCSV writes rows to w as UTF-8 CSV with a header line
func WriteCSV(w io.Writer, rows []scraper.CommentRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Name,
			row.Comment,
			row.Date,
			strconv.Itoa(row.Likes),
			row.PostTitle,
			row.PostLink,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes rows to the given path, creating parent
// directories as needed
func WriteCSVFile(path string, rows []scraper.CommentRow) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteCSV(file, rows); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
