package logging

import (
	"os"
	"sync"
)

const defaultMaxMB = 10

// cappedFile appends to path and, when a write would push it past the
// cap, moves the current file to path+".1" and starts over. At most one
// backup is kept.
type cappedFile struct {
	path  string
	limit int64

	mu   sync.Mutex
	f    *os.File
	size int64
}

func openCappedFile(path string, maxMB int) (*cappedFile, error) {
	if maxMB <= 0 {
		maxMB = defaultMaxMB
	}
	c := &cappedFile{path: path, limit: int64(maxMB) << 20}
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		if err := c.open(); err != nil {
			return 0, err
		}
	}
	if c.size > 0 && c.size+int64(len(p)) > c.limit {
		if err := c.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := c.f.Write(p)
	c.size += int64(n)
	return n, err
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

func (c *cappedFile) open() error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	c.f = f
	c.size = info.Size()
	return nil
}

func (c *cappedFile) rotate() error {
	_ = c.f.Close()
	c.f = nil
	if err := os.Rename(c.path, c.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.open()
}
