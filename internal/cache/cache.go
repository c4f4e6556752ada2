// Package cache snapshots row sets to disk so generation is repeatable
// without a database.
package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/tordrt/symbols/internal/schema"
)

// Ext is the extension of cache files.
const Ext = ".cache"

// magic opens every cache file, followed by the big-endian payload length.
var magic = [4]byte{'S', 'Y', 'M', '1'}

const headerSize = len(magic) + 4

// FetchFunc retrieves a row set from the live source.
type FetchFunc func(ctx context.Context) (*schema.RowSet, error)

// Error is returned for every failure of Load. It carries the cache path.
type Error struct {
	Op   string // "getwd", "read", "decode", "fetch", "encode", "write"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cache loads row sets from snapshot files in Dir.
type Cache struct {
	// Dir holds the cache files. Empty means the current working directory.
	Dir    string
	Logger *zap.Logger
}

// New returns a cache rooted at dir.
func New(dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{Dir: dir, Logger: logger}
}

// Path returns the cache file of table inside dir.
func Path(dir, table string) string {
	return filepath.Join(dir, table+Ext)
}

// Path returns the cache file of table, resolving the working directory if
// needed.
func (c *Cache) Path(table string) (string, error) {
	dir := c.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", &Error{Op: "getwd", Path: table + Ext, Err: err}
		}
		dir = wd
	}
	return Path(dir, table), nil
}

// Load returns the snapshot of table. An existing file is returned as is,
// without checking it against the source. Otherwise fetch is called and its
// result persisted before it is returned.
//
// Concurrent first loads of the same table race on the file; the last
// writer wins.
func (c *Cache) Load(ctx context.Context, table string, fetch FetchFunc) (*schema.RowSet, error) {
	path, err := c.Path(table)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.Logger.Debug("using existing cache file", zap.String("path", path))
		rs, err := Decode(data)
		if err != nil {
			return nil, &Error{Op: "decode", Path: path, Err: err}
		}
		return rs, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &Error{Op: "read", Path: path, Err: err}
	}

	c.Logger.Info("creating new cache file", zap.String("path", path))
	rs, err := fetch(ctx)
	if err != nil {
		return nil, &Error{Op: "fetch", Path: path, Err: err}
	}
	c.Logger.Debug("fetched rows", zap.String("table", table), zap.Int("rows", len(rs.Rows)))

	data, err = Encode(rs)
	if err != nil {
		return nil, &Error{Op: "encode", Path: path, Err: err}
	}
	if err := writeFile(path, data); err != nil {
		return nil, &Error{Op: "write", Path: path, Err: err}
	}
	return rs, nil
}

// Encode serializes rs into the cache file format.
func Encode(rs *schema.RowSet) ([]byte, error) {
	payload, err := msgpack.Marshal(rs)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, headerSize, headerSize+len(payload))
	copy(buf, magic[:])
	binary.BigEndian.PutUint32(buf[len(magic):], uint32(len(payload)))
	return append(buf, payload...), nil
}

// Decode parses the cache file format.
func Decode(data []byte) (*schema.RowSet, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, errors.New("not a symbols cache file")
	}
	n := binary.BigEndian.Uint32(data[len(magic):headerSize])
	payload := data[headerSize:]
	if uint64(len(payload)) != uint64(n) {
		return nil, fmt.Errorf("truncated payload: header says %d bytes, found %d", n, len(payload))
	}
	rs := new(schema.RowSet)
	if err := msgpack.Unmarshal(payload, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// writeFile replaces path atomically: readers see either no file or the
// complete snapshot.
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
