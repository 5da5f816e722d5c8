package jsonl

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// TransformFunc converts one record into another. Returning a nil record (with
// a nil error) drops the record from the output. A returned error aborts the
// whole transformation.
//
// Since a decoded JSON null is also nil, null records cannot be distinguished
// from a drop: they are dropped.
type TransformFunc func(record Record) (Record, error)

// Mode selects how Transform holds records in memory.
type Mode int

const (
	// LoadAll materializes every transformed record before writing the output,
	// at the cost of O(n) memory. Nothing is written if any record fails.
	LoadAll Mode = iota

	// Streaming reads, transforms and writes one record at a time, bounding
	// memory to O(1) records. A mid-stream failure leaves a partially written
	// output file -- fail-fast, not recovered.
	Streaming
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case LoadAll:
		return "LoadAll"
	case Streaming:
		return "Streaming"
	}
	return "InvalidMode"
}

type transformConfig struct {
	progress bool
}

// TransformOption configures Transform.
type TransformOption func(*transformConfig)

// WithProgress displays a progress bar while transforming.
func WithProgress() TransformOption {
	return func(cfg *transformConfig) { cfg.progress = true }
}

// Transform reads the JSONL file in inputPath, applies fn to each record and
// writes the results to outputPath (created or overwritten), preserving the
// input order and skipping dropped records. It returns the number of records
// written.
//
// A line that fails to parse fails the whole operation with a
// *MalformedRecordError; an error returned by fn is propagated with the
// offending 1-based line number annotated (the original error remains
// reachable through errors.Is / errors.As). The input file is never mutated.
func Transform(inputPath, outputPath string, fn TransformFunc, mode Mode, opts ...TransformOption) (int, error) {
	cfg := &transformConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	switch mode {
	case LoadAll:
		return transformLoadAll(inputPath, outputPath, fn, cfg)
	case Streaming:
		return transformStreaming(inputPath, outputPath, fn, cfg)
	}
	exceptions.Panicf("jsonl.Transform: invalid mode %d", mode)
	panic(nil) // Unreachable.
}

func newTransformBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records"),
	)
}

// applyFn runs fn on one parsed record, annotating any error with the input
// position.
func applyFn(fn TransformFunc, record Record, inputPath string, lineNum int) (Record, error) {
	result, err := fn(record)
	if err != nil {
		return nil, errors.WithMessagef(err, "transform failed at %s:%d", inputPath, lineNum)
	}
	return result, nil
}

func transformLoadAll(inputPath, outputPath string, fn TransformFunc, cfg *transformConfig) (int, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open JSONL file %q", inputPath)
	}
	defer func() { _ = f.Close() }()

	var bar *progressbar.ProgressBar
	if cfg.progress {
		bar = newTransformBar("transform " + inputPath)
	}

	var transformed []Record
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
			return 0, &MalformedRecordError{Path: inputPath, Line: lineNum, Err: err}
		}
		result, err := applyFn(fn, record, inputPath, lineNum)
		if err != nil {
			return 0, err
		}
		if result == nil {
			continue
		}
		transformed = append(transformed, result)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "failed to read JSONL file %q", inputPath)
	}

	// Only now that every record transformed successfully is the output written.
	if err := Dump(outputPath, transformed); err != nil {
		return 0, err
	}
	return len(transformed), nil
}

func transformStreaming(inputPath, outputPath string, fn TransformFunc, cfg *transformConfig) (int, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open JSONL file %q", inputPath)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create JSONL file %q", outputPath)
	}
	defer func() { _ = out.Close() }()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)

	var bar *progressbar.ProgressBar
	if cfg.progress {
		bar = newTransformBar("transform " + inputPath)
	}

	written := 0
	scanner := newLineScanner(in)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record Record
		if err := json.UnmarshalFromString(line, &record); err != nil {
			_ = w.Flush()
			return written, &MalformedRecordError{Path: inputPath, Line: lineNum, Err: err}
		}
		result, err := applyFn(fn, record, inputPath, lineNum)
		if err != nil {
			_ = w.Flush()
			return written, err
		}
		if result == nil {
			continue
		}
		if err := enc.Encode(result); err != nil {
			return written, errors.Wrapf(err, "failed to encode record to %q", outputPath)
		}
		written++
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return written, errors.Wrapf(err, "failed to read JSONL file %q", inputPath)
	}
	if err := w.Flush(); err != nil {
		return written, errors.Wrapf(err, "failed to write JSONL file %q", outputPath)
	}
	if err := out.Close(); err != nil {
		return written, errors.Wrapf(err, "failed to close JSONL file %q", outputPath)
	}
	klog.V(1).Infof("transformed %d records from %s to %s", written, inputPath, outputPath)
	return written, nil
}

// TransformInPlace applies fn to every record of the JSONL file in path and
// writes the results back to the same file. The whole file is loaded in memory
// first; every saveEvery the progress so far (transformed prefix plus the
// still-untouched tail) is written to a temporary file and atomically renamed
// over the source, so an interruption loses at most saveEvery worth of work.
//
// Unlike Transform, a record whose parse or transform fails is kept unmodified
// in the file and skipped, matching the resumable, best-effort nature of
// in-place editing. It returns the number of records successfully transformed.
func TransformInPlace(path string, fn TransformFunc, saveEvery time.Duration) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open JSONL file %q", path)
	}
	var lines []string
	scanner := newLineScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	scanErr := scanner.Err()
	_ = f.Close()
	if scanErr != nil {
		return 0, errors.Wrapf(scanErr, "failed to read JSONL file %q", path)
	}
	klog.V(1).Infof("transforming %d records of %s in place", len(lines), path)

	processed := make([]string, 0, len(lines))
	transformedCount, skipped := 0, 0
	lastSave := time.Now()
	for idx, line := range lines {
		var record Record
		if err := json.UnmarshalFromString(line, &record); err != nil {
			klog.Warningf("%s:%d failed to parse, keeping line unmodified: %v", path, idx+1, err)
			processed = append(processed, line)
			skipped++
		} else if result, err := fn(record); err != nil {
			klog.Warningf("%s:%d transform failed, keeping line unmodified: %v", path, idx+1, err)
			processed = append(processed, line)
			skipped++
		} else if result != nil {
			encoded, err := json.MarshalToString(result)
			if err != nil {
				return transformedCount, errors.Wrapf(err, "failed to encode record %d of %q", idx+1, path)
			}
			processed = append(processed, encoded)
			transformedCount++
		}
		// A nil result drops the line.

		if saveEvery > 0 && time.Since(lastSave) >= saveEvery {
			if err := atomicSaveLines(path, processed, lines[idx+1:]); err != nil {
				return transformedCount, err
			}
			klog.V(1).Infof("saved progress: %d/%d records of %s", idx+1, len(lines), path)
			lastSave = time.Now()
		}
	}

	if err := atomicSaveLines(path, processed, nil); err != nil {
		return transformedCount, err
	}
	klog.V(1).Infof("transformed %d records of %s in place (%d kept unmodified)",
		transformedCount, path, skipped)
	return transformedCount, nil
}

// atomicSaveLines writes processed followed by remaining to path+".tmp" and
// renames it over path.
func atomicSaveLines(path string, processed, remaining []string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file %q", tmpPath)
	}
	w := bufio.NewWriter(f)
	for _, group := range [][]string{processed, remaining} {
		for _, line := range group {
			if _, err = w.WriteString(line); err == nil {
				err = w.WriteByte('\n')
			}
			if err != nil {
				_ = f.Close()
				return errors.Wrapf(err, "failed to write temporary file %q", tmpPath)
			}
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write temporary file %q", tmpPath)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to sync temporary file %q", tmpPath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to replace %q with %q", path, tmpPath)
	}
	return nil
}
