// Package diskmanager performs byte-exact random read/write of Blocks
// against inode-addressed files under a configured storage root. No
// caching happens here; that is the buffer pool's job (package
// bufferpool).
package diskmanager

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zhukovaskychina/reldb/logger"
	"github.com/zhukovaskychina/reldb/server/storage/block"
)

// Manager reads and writes fixed-size blocks from/to files rooted at Dir.
type Manager struct {
	Dir string
}

// New returns a Manager rooted at dir. dir must already exist.
func New(dir string) *Manager {
	return &Manager{Dir: dir}
}

func (m *Manager) path(fileName string) string {
	return filepath.Join(m.Dir, fileName)
}

// CreateFile creates a new, empty inode file. Fails if it already exists.
func (m *Manager) CreateFile(fileName string) error {
	f, err := os.OpenFile(m.path(fileName), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "diskmanager: create file %s", fileName)
	}
	return f.Close()
}

// OpenFile verifies fileName exists and is accessible.
func (m *Manager) OpenFile(fileName string) error {
	f, err := os.OpenFile(m.path(fileName), os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "diskmanager: open file %s", fileName)
	}
	return f.Close()
}

// DeleteFile removes fileName.
func (m *Manager) DeleteFile(fileName string) error {
	if err := os.Remove(m.path(fileName)); err != nil {
		return errors.Wrapf(err, "diskmanager: delete file %s", fileName)
	}
	return nil
}

// RenameFile renames oldName to newName within the storage root.
func (m *Manager) RenameFile(oldName, newName string) error {
	if err := os.Rename(m.path(oldName), m.path(newName)); err != nil {
		return errors.Wrapf(err, "diskmanager: rename %s to %s", oldName, newName)
	}
	return nil
}

// AppendBlock appends one zero-initialized Block (Lower=0, Upper=DataSize)
// to fileName and returns its ordinal.
func (m *Manager) AppendBlock(fileName string) (uint32, error) {
	f, err := os.OpenFile(m.path(fileName), os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return 0, errors.Wrapf(err, "diskmanager: append block to %s", fileName)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "diskmanager: stat %s", fileName)
	}
	ordinal := uint32(stat.Size() / block.Size)

	b := block.New(ordinal)
	if _, err := f.Write(b.Marshal()); err != nil {
		return 0, errors.Wrapf(err, "diskmanager: append block to %s", fileName)
	}
	logger.Logger.Debugf("diskmanager: appended block %d to %s", ordinal, fileName)
	return ordinal, nil
}

// ReadBlock reads the block addressed by id.
func (m *Manager) ReadBlock(id PageID) (*block.Block, error) {
	f, err := os.OpenFile(m.path(id.FileName()), os.O_RDONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "diskmanager: read block %s", id)
	}
	defer f.Close()

	buf := make([]byte, block.Size)
	off := int64(id.Ordinal) * block.Size
	n, err := f.ReadAt(buf, off)
	if err != nil || n != block.Size {
		if err == nil {
			err = errors.Errorf("short read: got %d of %d bytes", n, block.Size)
		}
		return nil, errors.Wrapf(err, "diskmanager: read block %s", id)
	}
	return block.Unmarshal(buf)
}

// WriteBlock writes b at the position addressed by id. The file must
// already be at least (ordinal+1)*block.Size bytes long (i.e. the block was
// previously appended).
func (m *Manager) WriteBlock(id PageID, b *block.Block) error {
	f, err := os.OpenFile(m.path(id.FileName()), os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "diskmanager: write block %s", id)
	}
	defer f.Close()

	off := int64(id.Ordinal) * block.Size
	if _, err := f.WriteAt(b.Marshal(), off); err != nil {
		return errors.Wrapf(err, "diskmanager: write block %s", id)
	}
	return nil
}
