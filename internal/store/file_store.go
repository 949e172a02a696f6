package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

// 磁盘布局：
//
//	<Path>/<id>.json    # 单个 hub 的扁平 JSON 文档
//
// 写入通过临时文件 + rename 保证原子性。
const documentExt = ".json"

// FileStore 通过 entryLock 避免同一 id 并发写入，seq 在打开时从磁盘恢复。
type FileStore struct {
	basePath string
	now      func() time.Time

	mu    sync.Mutex
	seq   int64
	locks map[int64]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// NewFileStore 以 basePath 为根目录构建文档存储，整站复用一份实例。
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		return nil, errors.New("storage path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	ids, err := listIDs(abs)
	if err != nil {
		return nil, fmt.Errorf("scan storage path: %w", err)
	}
	var seq int64
	if len(ids) > 0 {
		seq = ids[len(ids)-1]
	}

	return &FileStore{
		basePath: abs,
		now:      time.Now,
		seq:      seq,
		locks:    make(map[int64]*entryLock),
	}, nil
}

func (s *FileStore) Find(ctx context.Context) ([]hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("find", err)
	}

	ids, err := listIDs(s.basePath)
	if err != nil {
		return nil, hubs.WrapError("find", err)
	}

	result := make([]hubs.Hub, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, hubs.WrapError("find", err)
		}
		hub, err := s.read(id)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// 并发删除
				continue
			}
			return nil, hubs.WrapError("find", err)
		}
		result = append(result, *hub)
	}
	return result, nil
}

func (s *FileStore) FindByID(ctx context.Context, rawID string) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("findById", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}

	hub, err := s.read(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, hubs.WrapError("findById", err)
	}
	return hub, nil
}

func (s *FileStore) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("add", err)
	}

	s.mu.Lock()
	s.seq++
	id := s.seq
	s.mu.Unlock()

	unlock := s.lockEntry(id)
	defer unlock()

	hub := hubs.New(id, fields, s.now())
	if err := s.write(hub); err != nil {
		return nil, hubs.WrapError("add", err)
	}
	return &hub, nil
}

func (s *FileStore) Update(ctx context.Context, rawID string, fields hubs.Fields) (*hubs.Hub, error) {
	if err := ctx.Err(); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return nil, nil
	}

	unlock := s.lockEntry(id)
	defer unlock()

	hub, err := s.read(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, hubs.WrapError("update", err)
	}

	hub.Fields = hubs.Merge(hub.Fields, fields)
	hub.UpdatedAt = s.now().UTC()
	if err := s.write(*hub); err != nil {
		return nil, hubs.WrapError("update", err)
	}
	return hub, nil
}

func (s *FileStore) Remove(ctx context.Context, rawID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, hubs.WrapError("remove", err)
	}
	id, ok := hubs.ParseID(rawID)
	if !ok {
		return false, nil
	}

	unlock := s.lockEntry(id)
	defer unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, hubs.WrapError("remove", err)
	}
	return true, nil
}

func (s *FileStore) read(id int64) (*hubs.Hub, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var hub hubs.Hub
	if err := json.Unmarshal(raw, &hub); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path(id), err)
	}
	hub.ID = id
	return &hub, nil
}

func (s *FileStore) write(hub hubs.Hub) error {
	raw, err := json.Marshal(hub)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(s.basePath, ".hub-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(raw)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, s.path(hub.ID)); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}

func (s *FileStore) lockEntry(id int64) func() {
	s.mu.Lock()
	lock := s.locks[id]
	if lock == nil {
		lock = &entryLock{}
		s.locks[id] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *FileStore) path(id int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(id, 10)+documentExt)
}

// listIDs 返回目录下全部文档 id（升序），忽略临时文件与无关文件。
func listIDs(dir string) ([]int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, documentExt) {
			continue
		}
		id, ok := hubs.ParseID(strings.TrimSuffix(name, documentExt))
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

var _ hubs.Database = (*FileStore)(nil)
