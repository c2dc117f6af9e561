// file: internal/backup/backup.go
// version: 1.1.0
// guid: 8f9e0a1b-2c3d-4e5f-6a7b-8c9d0e1f2a3b

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info describes a single backup archive on disk.
type Info struct {
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	DatabaseType string    `json:"database_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Config holds backup settings.
type Config struct {
	BackupDir        string
	MaxBackups       int
	CompressionLevel int
}

// DefaultConfig returns the default backup settings.
func DefaultConfig() Config {
	return Config{
		BackupDir:        "backups",
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// Create archives the medication database into a timestamped tar.gz.
// PebbleDB paths are directories and get archived recursively; SQLite
// paths are single files. Old archives beyond MaxBackups are pruned.
func Create(databasePath, databaseType string, cfg Config) (*Info, error) {
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("medications_%s_%s.tar.gz", databaseType, timestamp)
	archivePath := filepath.Join(cfg.BackupDir, filename)

	if err := writeArchive(archivePath, databasePath, cfg.CompressionLevel); err != nil {
		os.Remove(archivePath)
		return nil, err
	}

	fileInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}
	checksum, err := fileChecksum(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	info := &Info{
		Filename:     filename,
		Path:         archivePath,
		Size:         fileInfo.Size(),
		Checksum:     checksum,
		DatabaseType: databaseType,
		CreatedAt:    time.Now(),
	}

	if err := prune(cfg.BackupDir, cfg.MaxBackups); err != nil {
		log.Printf("[WARN] failed to prune old backups: %v", err)
	}

	return info, nil
}

func writeArchive(archivePath, databasePath string, level int) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	gz, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	if err := addToArchive(tw, databasePath); err != nil {
		return fmt.Errorf("failed to add files to archive: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return out.Close()
}

// Restore unpacks a backup archive under targetDir. The database must
// be closed before restoring over it.
func Restore(backupPath, targetDir string) error {
	in, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		// Reject entries that would escape the target directory.
		target := filepath.Join(targetDir, header.Name)
		if !strings.HasPrefix(target, filepath.Clean(targetDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes target directory: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
			}
			if err := extractFile(tr, target, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			log.Printf("[WARN] skipping unsupported archive entry type %d for %s", header.Typeflag, header.Name)
		}
	}

	return nil
}

func extractFile(tr *tar.Reader, target string, mode os.FileMode) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(target, mode)
}

// List returns all backup archives found in backupDir, newest first.
func List(backupDir string) ([]Info, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(backupDir, entry.Name())
		checksum, _ := fileChecksum(path)

		backups = append(backups, Info{
			Filename:     entry.Name(),
			Path:         path,
			Size:         fi.Size(),
			Checksum:     checksum,
			DatabaseType: typeFromFilename(entry.Name()),
			CreatedAt:    fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Delete removes a backup archive.
func Delete(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

func typeFromFilename(name string) string {
	switch {
	case strings.Contains(name, "_pebble_"):
		return "pebble"
	case strings.Contains(name, "_sqlite_"):
		return "sqlite"
	default:
		return "unknown"
	}
}

func addToArchive(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat database path: %w", err)
	}

	if !info.IsDir() {
		return addFile(tw, path, info, filepath.Base(path))
	}

	// PebbleDB directory: archive relative to its parent so the
	// directory name survives the round trip.
	return filepath.Walk(path, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(filepath.Dir(path), file)
		if err != nil {
			return err
		}
		if fi.IsDir() {
			header, err := tar.FileInfoHeader(fi, "")
			if err != nil {
				return err
			}
			header.Name = relPath
			return tw.WriteHeader(header)
		}
		return addFile(tw, file, fi, relPath)
	})
}

func addFile(tw *tar.Writer, path string, fi os.FileInfo, name string) error {
	header, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	header.Name = name
	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func prune(backupDir string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}
	backups, err := List(backupDir)
	if err != nil {
		return err
	}
	// List is newest-first; everything past maxBackups goes.
	for _, old := range backups[min(maxBackups, len(backups)):] {
		if err := os.Remove(old.Path); err != nil {
			log.Printf("[WARN] failed to delete old backup %s: %v", old.Filename, err)
		}
	}
	return nil
}
