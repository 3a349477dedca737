// Package ops implements operational maintenance for a deployment:
// tar.gz backup and restore of the data directory, which holds the
// sqlite database (with its -wal/-shm sidecars while serve runs) and
// any catalog override file.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ManifestName is the first entry of every archive. It records what
// was backed up and the digest of each file, so a restore can prove
// the archive is complete and intact.
const ManifestName = "fieldops-manifest.json"

type Manifest struct {
	CreatedAt time.Time       `json:"createdAt"`
	Files     []ManifestEntry `json:"files"`
}

type ManifestEntry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// BackupDataDir archives srcDir into a tar.gz at archivePath. Files
// are hashed before they are copied and re-hashed during the copy;
// a live sqlite write landing between the two passes fails the backup
// instead of producing a silently torn database image. The main
// database file is always archived before its -wal and -shm sidecars.
func BackupDataDir(srcDir, archivePath string) error {
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if srcDir == "" || archivePath == "" {
		return fmt.Errorf("srcDir and archivePath are required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", srcDir)
	}

	paths, err := collectFiles(srcDir)
	if err != nil {
		return err
	}

	manifest := Manifest{CreatedAt: time.Now().UTC()}
	for _, rel := range paths {
		sum, size, err := hashFile(filepath.Join(srcDir, rel))
		if err != nil {
			return fmt.Errorf("hash %s: %w", rel, err)
		}
		manifest.Files = append(manifest.Files, ManifestEntry{Path: rel, Size: size, SHA256: sum})
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	if err := writeManifest(tw, manifest); err != nil {
		return err
	}
	for _, entry := range manifest.Files {
		if err := copyFileEntry(tw, srcDir, entry); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}

// collectFiles lists the regular files under root as slash-separated
// relative paths. Symlinks are skipped. Order is deterministic, with
// a sqlite database file sorting before its -wal and -shm sidecars.
func collectFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		bi, ri := sidecarRank(paths[i])
		bj, rj := sidecarRank(paths[j])
		if bi != bj {
			return bi < bj
		}
		return ri < rj
	})
	return paths, nil
}

// sidecarRank groups a sqlite sidecar with its database: the base
// name sorts the group, the rank orders db, then -wal, then -shm.
func sidecarRank(path string) (string, int) {
	switch {
	case strings.HasSuffix(path, "-wal"):
		return strings.TrimSuffix(path, "-wal"), 1
	case strings.HasSuffix(path, "-shm"):
		return strings.TrimSuffix(path, "-shm"), 2
	default:
		return path, 0
	}
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func writeManifest(tw *tar.Writer, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	hdr := &tar.Header{
		Name:    ManifestName,
		Mode:    0o644,
		Size:    int64(len(b)),
		ModTime: m.CreatedAt,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = tw.Write(b)
	return err
}

func copyFileEntry(tw *tar.Writer, srcDir string, entry ManifestEntry) error {
	path := filepath.Join(srcDir, filepath.FromSlash(entry.Path))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = entry.Path
	hdr.Size = entry.Size
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	h := sha256.New()
	n, err := io.CopyN(tw, io.TeeReader(src, h), entry.Size)
	if err != nil {
		return fmt.Errorf("copy %s: %w", entry.Path, err)
	}
	if n != entry.Size || hex.EncodeToString(h.Sum(nil)) != entry.SHA256 {
		return fmt.Errorf("file changed during backup: %s", entry.Path)
	}
	return nil
}

// RestoreDataDir extracts an archive into targetDir and verifies
// every extracted file against the archive manifest. Archives without
// a manifest restore without verification.
func RestoreDataDir(archivePath, targetDir string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return fmt.Errorf("archivePath and targetDir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	var manifest *Manifest
	extracted := map[string]string{}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if hdr.Name == ManifestName && manifest == nil {
			var m Manifest
			if err := json.NewDecoder(tr).Decode(&m); err != nil {
				return fmt.Errorf("decode manifest: %w", err)
			}
			manifest = &m
			continue
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return err
		}
		sum, err := extractFile(tr, filepath.Join(targetDir, filepath.FromSlash(rel)), hdr.Mode)
		if err != nil {
			return fmt.Errorf("extract %s: %w", rel, err)
		}
		extracted[rel] = sum
	}

	if manifest == nil {
		return nil
	}
	return verifyExtracted(manifest, extracted)
}

func extractFile(r io.Reader, path string, mode int64) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(mode))
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dst, h), r); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func verifyExtracted(manifest *Manifest, extracted map[string]string) error {
	for _, entry := range manifest.Files {
		sum, ok := extracted[entry.Path]
		if !ok {
			return fmt.Errorf("archive is missing %s listed in its manifest", entry.Path)
		}
		if sum != entry.SHA256 {
			return fmt.Errorf("restored file %s does not match its manifest digest", entry.Path)
		}
	}
	for rel := range extracted {
		if !manifestHas(manifest, rel) {
			return fmt.Errorf("archive entry %s is not listed in the manifest", rel)
		}
	}
	return nil
}

func manifestHas(m *Manifest, path string) bool {
	for _, entry := range m.Files {
		if entry.Path == path {
			return true
		}
	}
	return false
}

// safeRelPath rejects entry names that would escape the restore
// target.
func safeRelPath(name string) (string, error) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	clean := filepath.ToSlash(filepath.Clean(name))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if strings.HasPrefix(clean, "/") || filepath.IsAbs(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return clean, nil
}
