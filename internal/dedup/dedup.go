// SPDX-License-Identifier: MPL-2.0

// Package dedup implements the uq deduplication engine: a single-pass
// streaming reducer over delimited records that counts occurrences per
// comparison key, preserves first-seen ordering, and formats the result
// according to the resolved option set.
//
// Unlike the classic uniq, duplicates do not need to be adjacent: the engine
// buffers the whole input (up to a configured ceiling) and filters after the
// pass, when every key's final count is known.
package dedup

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrInputTooLarge is the sentinel error wrapped by InputTooLargeError.
var ErrInputTooLarge = errors.New("input too large")

type (
	// InputTooLargeError is returned when the running byte total of the
	// input exceeds the configured ceiling. The whole invocation is aborted;
	// there is no per-record skip.
	InputTooLargeError struct {
		// Limit is the configured ceiling in its human-readable form.
		Limit string
		// Total is the running byte count at the moment of the breach.
		Total int64
	}

	// record is one input record paired with its comparison key. The key
	// equals the text unless case-insensitive mode folded it.
	record struct {
		text string
		key  string
	}

	// Engine holds all state for one pass: the occurrence index, the
	// deduplicated (first-seen) sequence, the original sequence, and the
	// running byte total. State is private to the Engine; a fresh Engine
	// starts empty.
	Engine struct {
		opts   Options
		logger *log.Logger

		counts    map[string]int
		firstSeen []record
		records   []record
		total     int64
	}
)

// Error implements the error interface.
func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("input exceeds the configured maximum size of %s", e.Limit)
}

// Unwrap returns ErrInputTooLarge for errors.Is() compatibility.
func (e *InputTooLargeError) Unwrap() error { return ErrInputTooLarge }

// New creates an Engine for the given validated options. The logger is used
// for debug diagnostics only and may be nil.
func New(opts Options, logger *log.Logger) *Engine {
	return &Engine{
		opts:   opts,
		logger: logger,
		counts: make(map[string]int),
	}
}

// Records returns the number of records consumed so far.
func (e *Engine) Records() int { return len(e.records) }

// Distinct returns the number of distinct comparison keys seen so far.
func (e *Engine) Distinct() int { return len(e.firstSeen) }

// TotalBytes returns the running byte total (record lengths plus one
// delimiter each).
func (e *Engine) TotalBytes() int64 { return e.total }

// Consume reads records from r until exhaustion, updating the occurrence
// index and both sequences. It may be called more than once; the CLI calls
// it with the concatenation of all input sources.
//
// The size ceiling is checked after adding each record's byte cost and
// before the record is indexed, so the breaching record never appears in
// either sequence.
func (e *Engine) Consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), e.maxTokenSize())
	scanner.Split(splitRecords(e.opts.delimiter()))

	for scanner.Scan() {
		text := scanner.Text()

		e.total += int64(len(text)) + 1
		if e.total > e.opts.MaxInput {
			return &InputTooLargeError{Limit: e.opts.MaxInputText, Total: e.total}
		}

		key := text
		if e.opts.IgnoreCase {
			key = strings.ToLower(text)
		}

		rec := record{text: text, key: key}
		e.records = append(e.records, rec)
		e.counts[key]++
		if e.counts[key] == 1 {
			e.firstSeen = append(e.firstSeen, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		// A single record longer than the ceiling overflows the scanner
		// buffer before it can be counted; that is still a size breach.
		if errors.Is(err, bufio.ErrTooLong) {
			return &InputTooLargeError{Limit: e.opts.MaxInputText, Total: e.total}
		}
		return fmt.Errorf("reading input: %w", err)
	}

	if e.logger != nil {
		e.logger.Debug("pass complete",
			"records", len(e.records),
			"distinct", len(e.firstSeen),
			"bytes", e.total)
	}
	return nil
}

// WriteOutput traverses the accumulated state and writes the formatted
// result to w. In all-repeated mode the original sequence is traversed so
// every physical occurrence is emitted; otherwise the deduplicated sequence
// is traversed and each key is emitted once, in first-seen order with its
// first-seen casing.
func (e *Engine) WriteOutput(w io.Writer) error {
	bw := bufio.NewWriter(w)
	delim := e.opts.delimiter()

	width := 0
	if e.opts.Count {
		width = e.countWidth()
	}

	src := e.firstSeen
	if e.opts.AllRepeated {
		src = e.records
	}

	emitted := false
	var prevKey string
	for _, rec := range src {
		n := e.counts[rec.key]
		switch {
		case e.opts.OnlyUnique:
			if n != 1 {
				continue
			}
		case e.opts.OnlyRepeated:
			if n < 2 {
				continue
			}
		}

		// Group separators are only meaningful when traversing the
		// original sequence.
		if e.opts.AllRepeated {
			newGroup := !emitted || rec.key != prevKey
			switch e.opts.Method {
			case MethodPrepend:
				if newGroup {
					bw.WriteByte(delim)
				}
			case MethodSeparate:
				if emitted && rec.key != prevKey {
					bw.WriteByte(delim)
				}
			}
		}

		if e.opts.Count {
			fmt.Fprintf(bw, "%*d ", width, n)
		}
		bw.WriteString(rec.text)
		bw.WriteByte(delim)

		emitted = true
		prevKey = rec.key
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Run performs a complete pass: consume r, then format to w.
func (e *Engine) Run(r io.Reader, w io.Writer) error {
	if err := e.Consume(r); err != nil {
		return err
	}
	return e.WriteOutput(w)
}

// countWidth returns the count field width: one column wider than the
// widest occurrence count of this run, so single-digit counts render with a
// single leading space.
func (e *Engine) countWidth() int {
	maxCount := 0
	for _, n := range e.counts {
		if n > maxCount {
			maxCount = n
		}
	}
	return len(strconv.Itoa(maxCount)) + 1
}

// maxTokenSize sizes the scanner's token limit so any record the ceiling
// could admit fits, without letting a pathological record allocate beyond
// the ceiling.
func (e *Engine) maxTokenSize() int {
	limit := e.opts.MaxInput
	if limit > math.MaxInt64-2 {
		limit = math.MaxInt64 - 2
	}
	limit += 2
	if limit < bufio.MaxScanTokenSize {
		limit = bufio.MaxScanTokenSize
	}
	if limit > int64(math.MaxInt) {
		limit = int64(math.MaxInt)
	}
	return int(limit)
}

// splitRecords returns a bufio.SplitFunc that splits on the given delimiter
// byte. Unlike bufio.ScanLines it does not strip trailing carriage returns:
// records keep their original byte content. A final record without a
// trailing delimiter is still returned.
func splitRecords(delim byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, delim); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}
