package cursor

// Records is a lazy, single-pass sequence of records.
type Records interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// EachIterator yields one record at a time from a Cursor.
//
//	it := c.Each()
//	defer it.Close()
//	for it.Next() {
//		rec := it.Record()
//	}
//	if err := it.Err(); err != nil { ... }
type EachIterator struct {
	c    *Cursor
	key  int
	rec  Record
	err  error
	done bool
}

// Each returns a per-record iterator over c.
func (c *Cursor) Each() *EachIterator {
	return &EachIterator{c: c, key: -1}
}

// Next advances to the next record, fetching a new batch when the current one
// is used up. It returns false once a fetch yields an empty batch or fails.
func (it *EachIterator) Next() bool {
	if it.done {
		return false
	}
	c := it.c
	if c.batch != nil {
		c.pos++
	}
	if c.batch == nil || c.pos >= len(c.batch) {
		b, err := c.fetchBatch()
		if err != nil {
			it.err = err
			it.finish()
			return false
		}
		c.batch = b
		c.pos = 0
		if len(b) == 0 {
			it.finish()
			return false
		}
	}
	it.rec = c.batch[c.pos]
	it.key++
	return true
}

func (it *EachIterator) finish() {
	it.done = true
	it.rec = Record{}
	it.key = -1
}

// Key returns the 0-based position of the current record, or -1 when there is none.
func (it *EachIterator) Key() int { return it.key }

// Record returns the current record.
func (it *EachIterator) Record() Record { return it.rec }

// Err returns the error that stopped iteration, if any.
func (it *EachIterator) Err() error { return it.err }

// Close resets the underlying cursor, releasing its reader.
func (it *EachIterator) Close() error {
	it.done = true
	return it.c.Reset()
}

// BatchIterator yields whole batches from a Cursor.
type BatchIterator struct {
	c     *Cursor
	key   int
	batch Batch
	err   error
	done  bool
}

// Batches returns a per-batch iterator over c.
func (c *Cursor) Batches() *BatchIterator {
	return &BatchIterator{c: c, key: -1}
}

// Next fetches the next batch. It returns false once a fetch yields an empty
// batch or fails.
func (it *BatchIterator) Next() bool {
	if it.done {
		return false
	}
	c := it.c
	b, err := c.fetchBatch()
	if err != nil {
		it.err = err
		it.done = true
		it.batch = nil
		return false
	}
	c.batch = b
	c.pos = 0
	if len(b) == 0 {
		it.done = true
		it.batch = nil
		return false
	}
	it.batch = b
	it.key++
	return true
}

// Key returns the 0-based index of the current batch, or -1 before the first one.
func (it *BatchIterator) Key() int { return it.key }

// Batch returns the current batch.
func (it *BatchIterator) Batch() Batch { return it.batch }

// Err returns the error that stopped iteration, if any.
func (it *BatchIterator) Err() error { return it.err }

// Close resets the underlying cursor, releasing its reader.
func (it *BatchIterator) Close() error {
	it.done = true
	return it.c.Reset()
}
