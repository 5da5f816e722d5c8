// Package jsonl reads, writes and transforms JSONL files: UTF-8 text files
// storing one JSON document per non-empty line, with no schema enforced across
// lines.
//
// All functions are synchronous and operate only on the files named by the
// caller. Concurrent calls on the same file are the caller's responsibility to
// coordinate.
package jsonl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one decoded JSON document (one line of a JSONL file).
type Record = any

// MalformedRecordError is returned when a non-empty line of a JSONL file fails
// to parse as JSON. Line is 1-based and counts every physical line of the
// file, including blank ones.
type MalformedRecordError struct {
	Path string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed JSONL record at %s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Scanners are given room for large single-line documents.
const maxLineSize = 64 * 1024 * 1024

func newLineScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// Load reads all records of the JSONL file in path. Blank lines are skipped.
//
// A line that fails to parse fails the whole load with a
// *MalformedRecordError carrying the 1-based line number.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open JSONL file %q", path)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := newLineScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record Record
		if err := json.UnmarshalFromString(line, &record); err != nil {
			return nil, &MalformedRecordError{Path: path, Line: lineNum, Err: err}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read JSONL file %q", path)
	}
	return records, nil
}

// Count returns the number of non-blank lines (records) in the JSONL file.
// It does not parse the records.
func Count(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open JSONL file %q", path)
	}
	defer func() { _ = f.Close() }()

	count := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to read JSONL file %q", path)
	}
	return count, nil
}

// Dump writes records to path, one compact JSON document per line,
// creating or overwriting the file.
func Dump(path string, records []Record) error {
	if err := writeRecords(path, records, os.O_WRONLY|os.O_CREATE|os.O_TRUNC); err != nil {
		return err
	}
	klog.V(1).Infof("saved %d records to %s", len(records), path)
	return nil
}

// Append appends records to the JSONL file in path, creating it if needed.
func Append(path string, records []Record) error {
	if err := writeRecords(path, records, os.O_WRONLY|os.O_CREATE|os.O_APPEND); err != nil {
		return err
	}
	klog.V(1).Infof("appended %d records to %s", len(records), path)
	return nil
}

func writeRecords(path string, records []Record, flags int) error {
	f, err := os.OpenFile(path, flags, 0664)
	if err != nil {
		return errors.Wrapf(err, "failed to open JSONL file %q for writing", path)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "failed to encode record to %q", path)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write JSONL file %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close JSONL file %q", path)
	}
	return nil
}
