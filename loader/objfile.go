// Package loader provides Y86-64 object code loading.
//
// Object code is line-oriented text. A record line carries a hex load
// address and a run of hex byte pairs:
//
//	0x00a: 30f70300000000000000
//
// Everything after a '|' is assembly listing commentary and everything
// after a '#' is a comment; both are stripped before parsing. Lines
// that do not form a record, and record lines with an empty byte run
// (address labels), are ignored.
package loader

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
)

// Loading errors.
var (
	// ErrNoCode reports object code with no byte-carrying records.
	ErrNoCode = errors.New("object code carries no bytes")
	// ErrBadRecord reports a record whose byte run is not a sequence
	// of hex pairs.
	ErrBadRecord = errors.New("malformed object code record")
	// ErrRange reports a record that falls outside the address space.
	ErrRange = errors.New("record outside memory")
)

// recordRE matches a record line: a hex address, a colon, and the rest
// of the line as a candidate byte run.
var recordRE = regexp.MustCompile(`^\s*0[xX]([0-9a-fA-F]+)\s*:(.*)$`)

// Record is a single byte-carrying object code record.
type Record struct {
	// Addr is the load address of the first byte.
	Addr int64
	// Data holds the record's bytes.
	Data []byte
}

// Program represents a parsed Y86-64 object code program.
type Program struct {
	// Entry is the address execution starts at: the lowest address
	// among the byte-carrying records.
	Entry int64

	// Records holds the byte-carrying records in file order. Records
	// may overlap; later records win when loaded in order.
	Records []Record
}

// Load reads and parses the object code file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse reads object code text from r. Every record is validated
// eagerly: a malformed byte run or a record outside the address space
// fails the whole parse, so a returned Program always loads cleanly.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{Entry: -1}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		rec, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}

		if prog.Entry < 0 || rec.Addr < prog.Entry {
			prog.Entry = rec.Addr
		}
		prog.Records = append(prog.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read object code: %w", err)
	}

	if len(prog.Records) == 0 {
		return nil, ErrNoCode
	}
	return prog, nil
}

// parseLine parses one line of object code text. It reports ok=false
// for lines that are not records at all.
func parseLine(line string) (Record, bool, error) {
	// Strip listing commentary and comments.
	if i := strings.IndexByte(line, '|'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	match := recordRE.FindStringSubmatch(line)
	if match == nil {
		return Record{}, false, nil
	}

	run := stripSpace(match[2])
	if run == "" {
		// Address label with no bytes.
		return Record{}, false, nil
	}
	if len(run)%2 != 0 {
		return Record{}, false, fmt.Errorf("%w: odd hex digit count %q", ErrBadRecord, run)
	}
	data, err := hex.DecodeString(run)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %q", ErrBadRecord, run)
	}

	addr, err := strconv.ParseUint(match[1], 16, 63)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: address 0x%s", ErrRange, match[1])
	}
	if int64(addr)+int64(len(data)) > emu.MemSize {
		return Record{}, false, fmt.Errorf("%w: %d bytes at %#x", ErrRange, len(data), addr)
	}

	return Record{Addr: int64(addr), Data: data}, true, nil
}

// stripSpace removes all whitespace from a byte run, so records may
// space-separate their hex pairs.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// LoadInto copies the program's records into mem in file order and, if
// touched is non-nil, marks the words they cover.
func (p *Program) LoadInto(mem *emu.Memory, touched emu.WordSet) error {
	for _, rec := range p.Records {
		if err := mem.Load(rec.Addr, rec.Data); err != nil {
			return fmt.Errorf("failed to load record at %#x: %w", rec.Addr, err)
		}
		if touched != nil {
			touched.Touch(rec.Addr, int64(len(rec.Data)))
		}
	}
	return nil
}

// Size returns the total number of bytes the program's records carry,
// counting overlapping bytes once per record.
func (p *Program) Size() int64 {
	var n int64
	for _, rec := range p.Records {
		n += int64(len(rec.Data))
	}
	return n
}
