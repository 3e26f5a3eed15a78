package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupNotFound = errors.New("backup not found")
	ErrBackupExists   = errors.New("backup already exists")
	ErrInvalidTag     = errors.New("invalid backup tag")
)

const maxAutoBackups = 5

// BackupInfo describes one snapshot of the database file.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Path          string    `json:"-"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// BackupManager writes consistent copies of the database next to it, under backups/.
type BackupManager struct {
	storage *SQLiteStorage
	dir     string
}

// NewBackupManager creates the backups directory for s.
// In-memory databases have nowhere to back up to.
func (s *SQLiteStorage) NewBackupManager() (*BackupManager, error) {
	if s.dbPath == ":memory:" {
		return nil, errors.New("cannot back up an in-memory database")
	}
	dir := filepath.Join(filepath.Dir(s.dbPath), "backups")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	return &BackupManager{storage: s, dir: dir}, nil
}

// Create snapshots the database under tag. An empty tag is generated from the clock.
func (m *BackupManager) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	return m.create(ctx, tag, description, false)
}

// Auto takes a backup ahead of a bulk operation and prunes old automatic backups.
func (m *BackupManager) Auto(ctx context.Context, operation string) (*BackupInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, time.Now().Format("20060102-150405"))
	info, err := m.create(ctx, tag, "Automatic backup before "+operation, true)
	if err != nil {
		return nil, err
	}
	if err := m.prune(ctx); err != nil {
		slog.Warn("Failed to prune automatic backups", "error", err)
	}
	return info, nil
}

func (m *BackupManager) create(ctx context.Context, tag, description string, auto bool) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = "backup-" + time.Now().Format("20060102-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	dbPath, err := filepath.Abs(filepath.Join(m.dir, tag+".db"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if _, statErr := os.Stat(dbPath); statErr == nil {
		return nil, ErrBackupExists
	}

	version, err := m.storage.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	count, err := m.storage.GetTransactionCount(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := m.storage.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// VACUUM INTO takes a parameter, so the path never reaches the SQL text.
	if _, err := m.storage.db.ExecContext(ctx, "VACUUM INTO ?", dbPath); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := BackupInfo{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		Path:          dbPath,
		FileSize:      stat.Size(),
		Transactions:  count,
		SchemaVersion: version,
		IsAuto:        auto,
	}
	if err := writeMeta(m.metaPath(tag), info); err != nil {
		if rmErr := os.Remove(dbPath); rmErr != nil {
			slog.Error("Failed to remove backup after metadata error", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("Created backup", "id", tag, "transactions", count, "size", info.FileSize)
	return &info, nil
}

// List returns every backup, newest first. Unreadable metadata is skipped.
func (m *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		info, err := readMeta(filepath.Join(m.dir, name))
		if err != nil {
			slog.Debug("Skipping unreadable backup metadata", "file", name, "error", err)
			continue
		}
		info.Path = filepath.Join(m.dir, info.ID+".db")
		backups = append(backups, *info)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Delete removes a backup and its metadata.
func (m *BackupManager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}
	dbPath := filepath.Join(m.dir, id+".db")
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, ErrBackupNotFound)
		}
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(m.metaPath(id)); err != nil && !os.IsNotExist(err) {
		slog.Debug("Failed to remove backup metadata", "id", id, "error", err)
	}
	return nil
}

func (m *BackupManager) prune(ctx context.Context) error {
	backups, err := m.List(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, b := range backups {
		if !b.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoBackups {
			if err := m.Delete(ctx, b.ID); err != nil {
				slog.Debug("Failed to delete old automatic backup", "id", b.ID, "error", err)
			}
		}
	}
	return nil
}

func (m *BackupManager) metaPath(id string) string {
	return filepath.Join(m.dir, id+".meta.json")
}

func validateTag(tag string) error {
	if err := validateString(tag, "tag"); err != nil {
		return err
	}
	if strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q cannot contain path separators", ErrInvalidTag, tag)
	}
	return nil
}

func writeMeta(path string, info BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMeta(path string) (*BackupInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the backups directory listing
	if err != nil {
		return nil, err
	}
	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
