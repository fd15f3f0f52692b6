package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the on-disk footprint of the contact database and search index.
type Usage struct {
	DatabaseBytes int64 `json:"database_bytes"`
	IndexBytes    int64 `json:"index_bytes"`
}

// Total returns the combined size.
func (u Usage) Total() int64 {
	return u.DatabaseBytes + u.IndexBytes
}

// MeasureUsage sizes the database (including its WAL sidecar files) and the index directory.
func MeasureUsage(dbPath, indexPath string) (Usage, error) {
	var u Usage
	var err error
	if dbPath != "" {
		u.DatabaseBytes, err = DiskUsageBytes(dbPath, dbPath+"-wal", dbPath+"-shm")
		if err != nil {
			return Usage{}, err
		}
	}
	u.IndexBytes, err = DiskUsageBytes(indexPath)
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}

// DiskUsageBytes returns the total size in bytes of the given paths.
// Directories are summed recursively. Empty and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
			continue
		}
		err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
