// Package cursor streams query results in fixed-size batches without
// materializing the full result set.
//
// A Cursor wraps a one-shot, forward-only Reader obtained from a Command.
// Rows are buffered up to the configured batch size and exposed through two
// iterators built on the same fetch primitive: Each yields one Record at a
// time, Batches yields whole Batches. A cursor is single-pass; call Reset to
// re-issue the query.
package cursor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DefaultBatchSize is used when no positive batch size is configured.
const DefaultBatchSize = 100

// ErrNoCommand is returned on first fetch when the cursor has no command.
var ErrNoCommand = errors.New("command has not been configured")

// Record is one result row: attribute keys in result order with their values.
// Records from the same reader share the Fields slice.
type Record struct {
	Fields []string
	Values []any
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for i, f := range r.Fields {
		if f == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Len returns the number of attributes in the record.
func (r Record) Len() int { return len(r.Fields) }

// Map copies the record into a map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Fields))
	for i, f := range r.Fields {
		m[f] = r.Values[i]
	}
	return m
}

// Batch is an ordered group of records fetched in one round trip.
type Batch []Record

// Reader is a forward-only handle over a query's rows. Read returns io.EOF
// once no rows remain.
type Reader interface {
	Read() (Record, error)
	Close() error
}

// Command executes the query behind a cursor.
type Command interface {
	Query() (Reader, error)
}

// DriverNamer is implemented by commands and readers that know the name of
// the database driver serving them.
type DriverNamer interface {
	DriverName() string
}

// Tolerator reports whether err, raised by the named driver while reading a
// batch, is a spurious end-of-rows signal rather than a failure.
type Tolerator func(err error, driverName string) bool

// Option configures a Cursor.
type Option func(*Cursor)

// WithBatchSize sets the number of rows fetched per batch.
func WithBatchSize(n int) Option {
	return func(c *Cursor) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithTolerator sets the classifier for driver errors that end a stream cleanly.
func WithTolerator(fn Tolerator) Option {
	return func(c *Cursor) { c.tolerate = fn }
}

// WithDriverName declares the driver name of the active connection.
func WithDriverName(name string) Option {
	return func(c *Cursor) { c.driver = name }
}

// Cursor buffers rows from a Command's Reader one batch at a time.
// A Cursor must not be shared between concurrent exports.
type Cursor struct {
	cmd      Command
	size     int
	tolerate Tolerator
	driver   string

	reader     Reader
	lastDriver string
	batch      Batch
	pos        int
	exhausted  bool
}

// New returns a cursor over cmd. The query is not executed until the first fetch.
func New(cmd Command, opts ...Option) *Cursor {
	c := &Cursor{cmd: cmd, size: DefaultBatchSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchSize returns the configured batch size.
func (c *Cursor) BatchSize() int { return c.size }

// Valid reports whether the current batch buffer holds any records.
func (c *Cursor) Valid() bool { return len(c.batch) > 0 }

// Open executes the command unless a reader is already open or the stream is
// exhausted. Calling it again before Reset is a no-op.
func (c *Cursor) Open() error {
	if c.reader != nil || c.exhausted {
		return nil
	}
	if c.cmd == nil {
		return ErrNoCommand
	}
	r, err := c.cmd.Query()
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	c.reader = r
	return nil
}

// Reset closes the open reader, if any, and clears the buffer and position so
// that the next fetch re-issues the query. It is safe to call repeatedly.
func (c *Cursor) Reset() error {
	err := c.release()
	c.batch = nil
	c.pos = 0
	c.exhausted = false
	return err
}

// Close disposes of the cursor. It is equivalent to Reset.
func (c *Cursor) Close() error { return c.Reset() }

func (c *Cursor) release() error {
	if c.reader == nil {
		return nil
	}
	if dn, ok := c.reader.(DriverNamer); ok {
		c.lastDriver = dn.DriverName()
	}
	err := c.reader.Close()
	c.reader = nil
	if err != nil {
		return fmt.Errorf("error closing reader: %w", err)
	}
	return nil
}

// fetchBatch reads up to BatchSize rows, opening the reader on first use.
// An empty batch means the stream is exhausted; the reader is released then.
func (c *Cursor) fetchBatch() (Batch, error) {
	if err := c.Open(); err != nil {
		c.batch = nil
		return nil, err
	}
	if c.exhausted {
		return Batch{}, nil
	}
	rows := make(Batch, 0, c.size)
	for len(rows) < c.size {
		rec, err := c.reader.Read()
		if errors.Is(err, io.EOF) {
			c.exhausted = true
			break
		}
		if err != nil {
			driver := c.driverName()
			if c.tolerate == nil || !c.tolerate(err, driver) {
				c.batch = nil
				return nil, err
			}
			slog.Debug("cursor: driver reported no more rows", "driver", driver, "rows", len(rows))
			c.exhausted = true
			break
		}
		rows = append(rows, rec)
	}
	if c.exhausted {
		if err := c.release(); err != nil {
			c.batch = nil
			return nil, err
		}
	}
	return rows, nil
}

// driverName prefers the declared name, then the command's connection, then
// the reader that produced the last row.
func (c *Cursor) driverName() string {
	if c.driver != "" {
		return c.driver
	}
	if dn, ok := c.cmd.(DriverNamer); ok && dn.DriverName() != "" {
		return dn.DriverName()
	}
	if dn, ok := c.reader.(DriverNamer); ok && dn.DriverName() != "" {
		return dn.DriverName()
	}
	return c.lastDriver
}
