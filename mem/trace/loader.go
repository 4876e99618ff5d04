package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// DefaultDir is where trace names without a directory are looked up.
const DefaultDir = "traces"

// A ParseError reports a trace line that cannot be parsed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A Loader reads traces.
type Loader struct {
	dir string
}

// NewLoader creates a loader that resolves bare trace names in dir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultDir
	}

	return &Loader{dir: dir}
}

// Resolve returns the path of the trace file. Names that exist as given or
// that contain a path separator are used as they are.
func (l *Loader) Resolve(name string) string {
	if strings.ContainsRune(name, filepath.Separator) ||
		strings.ContainsRune(name, '/') {
		return name
	}

	if _, err := os.Stat(name); err == nil {
		return name
	}

	return filepath.Join(l.dir, name)
}

// Load reads the named trace. Files ending in .lz4 are decompressed with LZ4
// and files ending in .sz or .snappy with the snappy framing format.
func (l *Loader) Load(name string) (Trace, error) {
	path := l.Resolve(name)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".lz4":
		return l.loadStream(path, func(r io.Reader) io.Reader {
			return lz4.NewReader(r)
		})
	case ".sz", ".snappy":
		return l.loadStream(path, func(r io.Reader) io.Reader {
			return snappy.NewReader(r)
		})
	}

	data, release, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace %s: %w", path, err)
	}
	defer release()

	return Read(bytes.NewReader(data))
}

func (l *Loader) loadStream(
	path string,
	wrap func(io.Reader) io.Reader,
) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace %s: %w", path, err)
	}
	defer f.Close()

	return Read(wrap(f))
}

// Read parses a trace from r. Every non-blank line must have the form
// `<L|S> <hex address>`.
func Read(r io.Reader) (Trace, error) {
	t := Trace{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := ParseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}

		t = append(t, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}

	return t, nil
}

// ParseLine parses a single trace line.
func ParseLine(line string) (AccessRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return AccessRecord{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	kind, err := ParseKind(fields[0])
	if err != nil {
		return AccessRecord{}, err
	}

	hex := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")

	address, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return AccessRecord{}, fmt.Errorf("invalid address: %w", err)
	}

	return AccessRecord{Kind: kind, Address: address}, nil
}

// Write writes the trace in the format that Read accepts.
func Write(w io.Writer, t Trace) error {
	bw := bufio.NewWriter(w)

	for _, r := range t {
		if _, err := fmt.Fprintf(bw, "%s %x\n", r.Kind, r.Address); err != nil {
			return err
		}
	}

	return bw.Flush()
}
