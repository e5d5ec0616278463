// Package catalog implements the "folder": the single name→inode-pair map
// that lets a table be looked up by name, plus the inode-allocation
// primitive every table/hash-index creation path uses.
package catalog

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
	nateatomic "github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/zhukovaskychina/reldb/logger"
)

const fileName = "folder"

// Catalog is the in-memory, lock-guarded form of the folder file.
type Catalog struct {
	dir string

	mu     sync.RWMutex
	tables []entry
}

type entry struct {
	name  string
	inode TableInode
}

// Create initializes a fresh, empty catalog file at dir/folder.
func Create(dir string) error {
	c := &Catalog{dir: dir}
	return c.Save()
}

// Open deserializes dir/folder into memory.
func Open(dir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrap(err, "catalog: open")
	}
	c := &Catalog{dir: dir}
	if err := c.unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "catalog: decode")
	}
	return c, nil
}

// Dir returns the storage root this catalog is rooted at.
func (c *Catalog) Dir() string { return c.dir }

// Lookup returns the inode pair registered under name.
func (c *Catalog) Lookup(name string) (TableInode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.tables {
		if e.name == name {
			return e.inode, true
		}
	}
	return TableInode{}, false
}

// Register enrolls name -> inode. Fails ErrTableExists on a duplicate name.
func (c *Catalog) Register(name string, inode TableInode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.tables {
		if e.name == name {
			return ErrTableExists
		}
	}
	c.tables = append(c.tables, entry{name: name, inode: inode})
	return nil
}

// AllocateInodePair creates two fresh, empty inode files (head and data)
// under the catalog's storage root and returns their pair. Mirrors the
// original create-a-temp-file-then-rename-to-its-own-inode-number trick:
// the file is created under a unique temp name (so concurrent allocations
// never collide before the rename), its real filesystem inode number is
// read back, and it is renamed to that number so later lookups can address
// it directly by inode.
func (c *Catalog) AllocateInodePair() (TableInode, error) {
	data, err := c.allocateInode()
	if err != nil {
		return TableInode{}, err
	}
	head, err := c.allocateInode()
	if err != nil {
		return TableInode{}, err
	}
	return TableInode{HeadIno: head, DataIno: data}, nil
}

func (c *Catalog) allocateInode() (uint64, error) {
	tmpName := "tmp-" + uuid.NewString()
	tmpPath := filepath.Join(c.dir, tmpName)

	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "catalog: allocate inode")
	}

	var stat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &stat); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, errors.Wrap(err, "catalog: fstat")
	}
	ino := uint64(stat.Ino)
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "catalog: close temp inode file")
	}

	finalPath := filepath.Join(c.dir, strconv.FormatUint(ino, 10))
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return 0, errors.Wrap(err, "catalog: rename to inode number")
	}
	logger.Logger.Debugf("catalog: allocated inode %d", ino)
	return ino, nil
}

// Save overwrites the catalog file with the current in-memory state,
// atomically: the write lands in a temp file that is renamed over folder,
// so a crash mid-save can never leave a half-written catalog behind.
func (c *Catalog) Save() error {
	c.mu.RLock()
	raw := c.marshal()
	c.mu.RUnlock()

	return errors.Wrap(
		nateatomic.WriteFile(filepath.Join(c.dir, fileName), bytes.NewReader(raw)),
		"catalog: save",
	)
}

func (c *Catalog) marshal() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint64(len(c.tables)))
	for _, e := range c.tables {
		binary.Write(&buf, binary.LittleEndian, uint16(len(e.name)))
		buf.WriteString(e.name)
		binary.Write(&buf, binary.LittleEndian, e.inode.HeadIno)
		binary.Write(&buf, binary.LittleEndian, e.inode.DataIno)
	}
	return buf.Bytes()
}

func (c *Catalog) unmarshal(raw []byte) error {
	r := bytes.NewReader(raw)
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	tables := make([]entry, 0, n)
	for i := uint64(0); i < n; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return err
		}
		var inode TableInode
		if err := binary.Read(r, binary.LittleEndian, &inode.HeadIno); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &inode.DataIno); err != nil {
			return err
		}
		tables = append(tables, entry{name: string(nameBytes), inode: inode})
	}
	c.tables = tables
	return nil
}
