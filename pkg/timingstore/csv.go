// Package timingstore loads historical test timings for the planner.
package timingstore

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
)

// csvHeader is the first row of a timing history file.
var csvHeader = []string{"Test Name", "Mean Duration (seconds)", "Runs"}

// ReadCSV parses a timing history. The header row is optional and the runs
// column is ignored.
func ReadCSV(r io.Reader) ([]core.TestTiming, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	timings := make([]core.TestTiming, 0)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return timings, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedTimings, err)
		}
		line++
		if line == 1 && len(record) > 0 && record[0] == csvHeader[0] {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns", errs.ErrMalformedTimings, line, len(record))
		}
		duration, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", errs.ErrMalformedTimings, line, err)
		}
		if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid duration %q", errs.ErrMalformedTimings, line, record[1])
		}
		timings = append(timings, core.TestTiming{Name: strings.TrimSpace(record[0]), DurationSeconds: duration})
	}
}

// WriteCSV writes timings in the format ReadCSV understands.
func WriteCSV(w io.Writer, timings []core.TestTiming) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range timings {
		if err := writer.Write([]string{t.Name, strconv.FormatFloat(t.DurationSeconds, 'f', -1, 64), "1"}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadArchive parses every csv entry of a zipped timing history, in archive order.
func ReadArchive(data []byte) ([]core.TestTiming, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedTimings, err)
	}
	timings := make([]core.TestTiming, 0)
	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, constants.TimingsCSVExt) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrMalformedTimings, entry.Name, err)
		}
		entryTimings, err := ReadCSV(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		timings = append(timings, entryTimings...)
	}
	return timings, nil
}

type fileStore struct {
	path   string
	logger lumber.Logger
}

// NewFile returns a TimingStore reading a csv or zipped csv file. A missing
// file yields no timings.
func NewFile(path string, logger lumber.Logger) core.TimingStore {
	return &fileStore{path: path, logger: logger}
}

func (f *fileStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	data, err := ioutil.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Warnf("timing history %s not found, planning without it", f.path)
			return nil, nil
		}
		return nil, err
	}
	var timings []core.TestTiming
	if strings.EqualFold(filepath.Ext(f.path), constants.TimingsArchiveExt) {
		timings, err = ReadArchive(data)
	} else {
		timings, err = ReadCSV(bytes.NewReader(data))
	}
	if err != nil {
		f.logger.Errorf("failed to parse timing history %s, error: %v", f.path, err)
		return nil, err
	}
	f.logger.Debugf("loaded %d test timings from %s", len(timings), f.path)
	return timings, nil
}
