package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// CommitRecords stores one JSON document per job and validator under a
// directory. Documents are replaced atomically through a rename.
type CommitRecords struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

var _ storage.CommitRecords = (*CommitRecords)(nil)

// NewCommitRecords creates the store, creating the directory if needed.
func NewCommitRecords(dir string) (*CommitRecords, error) {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("could not create commit record directory: %w", err)
	}
	return &CommitRecords{
		dir: dir,
		now: time.Now,
	}, nil
}

func (c *CommitRecords) path(jobID validation.JobID, validator common.Address) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d-%s.json", jobID, validation.AddressKey(validator)))
}

func (c *CommitRecords) ByID(jobID validation.JobID, validator common.Address) (*validation.CommitRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read(c.path(jobID, validator))
}

func (c *CommitRecords) ByJob(jobID validation.JobID) ([]*validation.CommitRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf("%d-0x*.json", jobID)))
	if err != nil {
		return nil, fmt.Errorf("could not list commit records of job %d: %w", jobID, err)
	}
	sort.Strings(paths)

	records := make([]*validation.CommitRecord, 0, len(paths))
	for _, path := range paths {
		record, err := c.read(path)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *CommitRecords) Unrevealed() ([]*validation.CommitRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(c.dir, "*-0x*.json"))
	if err != nil {
		return nil, fmt.Errorf("could not list commit records: %w", err)
	}

	var records []*validation.CommitRecord
	for _, path := range paths {
		record, err := c.read(path)
		if err != nil {
			return nil, err
		}
		if record.Committed() && !record.Revealed() {
			records = append(records, record)
		}
	}
	storage.SortCommitRecords(records)
	return records, nil
}

func (c *CommitRecords) Update(jobID validation.JobID, validator common.Address, update *validation.CommitRecordUpdate) (*validation.CommitRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path(jobID, validator)
	existing, err := c.read(path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	merged, err := storage.MergeCommitRecord(existing, jobID, validator, update, c.now())
	if err != nil {
		return nil, fmt.Errorf("could not merge commit record: %w", err)
	}

	err = c.write(path, merged)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (c *CommitRecords) read(path string) (*validation.CommitRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read commit record %s: %w", filepath.Base(path), err)
	}

	var record validation.CommitRecord
	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("could not decode commit record %s: %w", filepath.Base(path), err)
	}
	return &record, nil
}

func (c *CommitRecords) write(path string, record *validation.CommitRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode commit record: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "."+strings.TrimSuffix(filepath.Base(path), ".json")+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(filePerm)
	}
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("could not write commit record: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("could not replace commit record: %w", err)
	}
	return nil
}
