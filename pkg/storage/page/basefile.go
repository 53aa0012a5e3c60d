package page

import (
	"fmt"
	"os"
	"storemy/pkg/primitives"
	"sync"
)

// BaseFile is the thread-safe OS file handle shared by every DbFile
// implementation. It knows about page-sized reads and writes and about
// generating a stable TableID from its path; it knows nothing about the
// byte layout of what's inside a page.
type BaseFile struct {
	file     *os.File
	tableID  primitives.TableID
	filePath primitives.Filepath
	mutex    sync.RWMutex
}

func NewBaseFile(filePath primitives.Filepath) (*BaseFile, error) {
	if filePath == "" {
		return nil, fmt.Errorf("filePath cannot be empty")
	}

	file, err := os.OpenFile(string(filePath), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &BaseFile{
		file:     file,
		tableID:  filePath.Hash(),
		filePath: filePath,
	}, nil
}

func (bf *BaseFile) GetID() primitives.TableID {
	return bf.tableID
}

func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages reports the file's size in whole pages, rounding up a partial
// trailing page (which should never happen in practice, since pages are
// only ever appended via AllocateNewPage).
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return 0, fmt.Errorf("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}

	n := primitives.PageNumber(info.Size() / int64(PageSize))
	if info.Size()%int64(PageSize) != 0 {
		n++
	}
	return n, nil
}

// ReadPageData reads exactly PageSize bytes at pageNo's offset. Reading a
// page number at or past the end of the file, or a partial trailing page,
// returns io.EOF rather than a zero-filled page: the
// caller is expected to have already learned the file's size and must not
// be asking for a page it never allocated.
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return nil, fmt.Errorf("file is closed")
	}

	offset := int64(pageNo) * int64(PageSize)
	buf := make([]byte, PageSize)
	if _, err := bf.file.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, data []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return fmt.Errorf("file is closed")
	}
	if len(data) != PageSize {
		return fmt.Errorf("invalid page data size: expected %d, got %d", PageSize, len(data))
	}

	offset := int64(pageNo) * int64(PageSize)
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("failed to write page data: %w", err)
	}
	return bf.file.Sync()
}

// AllocateNewPage extends the file by one zero-filled page and returns its
// number. Extending under the write lock, rather than reading NumPages and
// writing separately, is what keeps two concurrent inserts from allocating
// the same page number.
func (bf *BaseFile) AllocateNewPage() (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return 0, fmt.Errorf("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}

	numPages := primitives.PageNumber(info.Size() / int64(PageSize))
	if info.Size()%int64(PageSize) != 0 {
		numPages++
	}

	zero := make([]byte, PageSize)
	offset := int64(numPages) * int64(PageSize)
	if _, err := bf.file.WriteAt(zero, offset); err != nil {
		return 0, fmt.Errorf("failed to reserve page space: %w", err)
	}
	if err := bf.file.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync file after page allocation: %w", err)
	}

	return numPages, nil
}

func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}
	err := bf.file.Close()
	bf.file = nil
	return err
}
