package hwlog

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JuanjoFuchs/hwinfo-tui/errors"
	"github.com/JuanjoFuchs/hwinfo-tui/metric"
	"github.com/JuanjoFuchs/hwinfo-tui/sensor"
)

// Timestamp layouts emitted by HWiNFO logging: zero-padded day.month.year
// plus a time column with or without milliseconds.
const (
	dateLayout       = "02.01.2006"
	timeLayoutMillis = "15:04:05.000"
	timeLayout       = "15:04:05"
)

// Cursor marks how much of the input file has been consumed. It is owned
// exclusively by the Reader, mutated only on successful consumption of a
// complete line, and never moves backward.
type Cursor struct {
	Offset   int64
	Encoding string
}

// Deps holds construction dependencies for the incremental reader
type Deps struct {
	Path      string
	Encodings []string        // ordered candidate encodings
	Sensors   []string        // exact column identities; empty means all
	Store     *sensor.Store   // destination for parsed readings
	Logger    *slog.Logger    // runtime dependency
	Metrics   *metric.Metrics // optional core metrics
}

// Reader tails the log file incrementally: on each Poll it reads from the
// cursor to end-of-file, parses fully terminated lines into readings, and
// appends them to the store. A trailing unterminated fragment is left for
// the next poll; re-polling without file growth is a no-op.
type Reader struct {
	path     string
	cursor   Cursor
	dec      decoder
	columns  []column // tracked sensor columns
	rowWidth int      // expected field count per data row
	store    *sensor.Store
	logger   *slog.Logger
	metrics  *metric.Metrics
	lastTS   time.Time
}

// Open resolves the file's encoding, parses the header and prepares the
// reader. The cursor starts immediately after the header line. All errors
// here are fatal startup errors: FileAccess, Encoding, or NoMatch.
func Open(deps Deps) (*Reader, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default().With("component", "hwlog-reader")
	}

	f, err := os.Open(deps.Path)
	if err != nil {
		return nil, errors.WrapFatal(stderrors.Join(errors.ErrFileAccess, err),
			"Reader", "Open", "open log file")
	}
	defer f.Close()

	headerRaw, consumed, err := readHeaderLine(f)
	if err != nil {
		return nil, errors.WrapFatal(stderrors.Join(errors.ErrFileAccess, err),
			"Reader", "Open", "read header line")
	}

	dec, allColumns, err := resolveEncoding(headerRaw, deps.Encodings)
	if err != nil {
		return nil, err
	}

	selected, err := selectColumns(allColumns, deps.Sensors)
	if err != nil {
		return nil, err
	}

	for _, col := range selected {
		deps.Store.Track(col.def)
	}

	r := &Reader{
		path:     deps.Path,
		cursor:   Cursor{Offset: consumed, Encoding: dec.name},
		dec:      dec,
		columns:  selected,
		rowWidth: len(allColumns) + 2,
		store:    deps.Store,
		logger:   logger,
		metrics:  deps.Metrics,
	}

	logger.Info("log header resolved",
		"path", deps.Path,
		"encoding", dec.name,
		"columns", len(allColumns),
		"tracked", len(selected))

	return r, nil
}

// readHeaderLine reads the raw first line. A file that ends without a line
// terminator still yields its header; otherwise the terminator is consumed
// with the line.
func readHeaderLine(f *os.File) (line []byte, consumed int64, err error) {
	br := bufio.NewReader(f)
	raw, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, 0, err
	}
	if len(raw) == 0 {
		return nil, 0, fmt.Errorf("empty file")
	}

	consumed = int64(len(raw))
	line = trimLineEnding(raw)
	return line, consumed, nil
}

func trimLineEnding(raw []byte) []byte {
	for len(raw) > 0 && (raw[len(raw)-1] == '\n' || raw[len(raw)-1] == '\r') {
		raw = raw[:len(raw)-1]
	}
	return raw
}

// selectColumns filters header columns down to the requested sensors. A
// non-empty request with zero matches is a fatal NoMatchError.
func selectColumns(all []column, requested []string) ([]column, error) {
	if len(requested) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[strings.TrimSpace(name)] = true
	}

	selected := make([]column, 0, len(requested))
	for _, col := range all {
		if wanted[col.def.Column()] {
			selected = append(selected, col)
		}
	}

	if len(selected) == 0 {
		return nil, errors.WrapFatal(errors.ErrNoMatch, "Reader", "Open", "sensor selection")
	}

	return selected, nil
}

// Cursor returns the current file cursor.
func (r *Reader) Cursor() Cursor {
	return r.cursor
}

// Columns returns the tracked sensor definitions in header order.
func (r *Reader) Columns() []sensor.Definition {
	out := make([]sensor.Definition, len(r.columns))
	for i, col := range r.columns {
		out[i] = col.def
	}
	return out
}

// Poll reads newly appended bytes and applies fully terminated rows to the
// store. It returns the number of rows applied. Polling without file growth
// is a no-op: zero rows, unchanged cursor.
func (r *Reader) Poll() (int, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return 0, errors.WrapTransient(err, "Reader", "Poll", "open log file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, errors.WrapTransient(err, "Reader", "Poll", "stat log file")
	}

	size := info.Size()
	if size < r.cursor.Offset {
		// The cursor never moves backward; a shrunken file is ignored
		// until the writer grows it past the cursor again.
		r.logger.Warn("log file shrank below cursor, ignoring",
			"size", size, "offset", r.cursor.Offset)
		return 0, nil
	}
	if size == r.cursor.Offset {
		return 0, nil
	}

	buf := make([]byte, size-r.cursor.Offset)
	if _, err := f.ReadAt(buf, r.cursor.Offset); err != nil && err != io.EOF {
		return 0, errors.WrapTransient(err, "Reader", "Poll", "tail read")
	}

	applied := 0
	pos := 0
	for {
		nl := bytes.IndexByte(buf[pos:], '\n')
		if nl < 0 {
			break
		}
		raw := buf[pos : pos+nl]
		lineBytes := int64(nl + 1)

		if r.processLine(trimLineEnding(raw)) {
			applied++
		}

		r.cursor.Offset += lineBytes
		if r.metrics != nil {
			r.metrics.BytesRead.Add(float64(lineBytes))
		}
		pos += nl + 1
	}

	if pos < len(buf) {
		// Unterminated fragment: the writer may still be mid-line. It is
		// re-read from the unchanged offset on the next poll.
		r.logger.Debug("retaining partial line", "bytes", len(buf)-pos)
	}

	return applied, nil
}

// processLine parses one complete line into readings. Any malformed row is
// row-local: it is skipped, logged at debug level, and still consumed so
// the cursor keeps moving forward. Returns true when readings were emitted.
func (r *Reader) processLine(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}

	text, err := r.dec.row(raw)
	if err != nil {
		r.skipRow("decode", err)
		return false
	}

	fields, err := splitRow(text)
	if err != nil {
		r.skipRow("split", err)
		return false
	}

	if len(fields) != r.rowWidth {
		r.skipRow("shape", fmt.Errorf("row has %d fields, header has %d", len(fields), r.rowWidth))
		return false
	}

	ts, err := parseTimestamp(fields[0], fields[1])
	if err != nil {
		r.skipRow("timestamp", err)
		return false
	}

	if ts.Before(r.lastTS) {
		// Accepting this row would emit readings out of timestamp order.
		r.skipRow("order", fmt.Errorf("timestamp %s before %s", ts, r.lastTS))
		return false
	}

	for _, col := range r.columns {
		value, missing := parseValue(fields[col.index])
		r.store.Append(col.def.Column(), sensor.Reading{
			Timestamp: ts,
			Value:     value,
			Missing:   missing,
		})
		if r.metrics != nil {
			r.metrics.ReadingsAppended.Inc()
		}
	}

	r.lastTS = ts
	if r.metrics != nil {
		r.metrics.RowsParsed.Inc()
	}
	return true
}

func (r *Reader) skipRow(reason string, err error) {
	r.logger.Debug("skipping malformed row", "reason", reason, "error", err)
	if r.metrics != nil {
		r.metrics.ParseErrors.WithLabelValues(reason).Inc()
	}
}

// parseTimestamp combines the date and time columns into one instant in
// local time, with or without milliseconds.
func parseTimestamp(dateField, timeField string) (time.Time, error) {
	combined := strings.TrimSpace(dateField) + " " + strings.TrimSpace(timeField)

	ts, err := time.ParseInLocation(dateLayout+" "+timeLayoutMillis, combined, time.Local)
	if err == nil {
		return ts, nil
	}

	ts, err = time.ParseInLocation(dateLayout+" "+timeLayout, combined, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", errors.ErrParseFailed, combined)
	}
	return ts, nil
}

// Boolean-style sensor vocabulary, matched case-insensitively and exactly.
var boolTokens = map[string]float64{
	"yes":   1.0,
	"true":  1.0,
	"no":    0.0,
	"false": 0.0,
}

// parseValue converts one field into a reading value. Non-numeric,
// non-boolean tokens (e.g. "N/A") become missing readings; they are never
// coerced to zero.
func parseValue(field string) (value float64, missing bool) {
	token := strings.TrimSpace(field)
	if token == "" {
		return 0, true
	}

	if v, err := strconv.ParseFloat(token, 64); err == nil {
		return v, false
	}

	if v, ok := boolTokens[strings.ToLower(token)]; ok {
		return v, false
	}

	return 0, true
}
