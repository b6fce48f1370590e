package template

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// extractArchive unpacks a zip or tar.gz archive into destDir. Entry paths
// are confined to destDir; an entry that would escape it fails the whole
// extraction.
func extractArchive(archivePath, destDir string) error {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, destDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		path, err := securePath(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", f.Name, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		err = writeEntry(path, rc, f.Mode())
		rc.Close()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		path, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(path, tr, fs.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
		default:
			// Symlinks and special files are not part of template archives.
		}
	}
	return nil
}

// securePath joins an archive entry name onto destDir, rejecting entries
// that would write outside it.
func securePath(destDir, name string) (string, error) {
	path := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return path, nil
}

func writeEntry(path string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// listTree returns all directory and regular file paths under root,
// relative to it, sorted for deterministic results. Directories are listed
// even when empty so the merge replicates the full template layout.
func listTree(root string) (dirs, files []string, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		switch {
		case d.IsDir():
			dirs = append(dirs, rel)
		case d.Type().IsRegular():
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files, nil
}

// mergeDir moves everything under stagingDir into targetDir, directories
// first (empty ones included). Conflicts are detected in a pre-pass before
// anything moves, so an abort leaves the target exactly as it was. Returns
// the relative file paths that were placed.
func mergeDir(stagingDir, targetDir string, overwrite bool) ([]string, error) {
	dirs, files, err := listTree(stagingDir)
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}

	for _, rel := range dirs {
		if info, err := os.Stat(filepath.Join(targetDir, rel)); err == nil && !info.IsDir() {
			return nil, fmt.Errorf("%s exists in %s as a file, expected a directory", rel, targetDir)
		}
	}
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(targetDir, rel))
		if err != nil {
			continue
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s exists in %s as a directory, expected a file", rel, targetDir)
		}
		if !overwrite {
			return nil, fmt.Errorf("%s already exists in %s (use overwrite to replace)", rel, targetDir)
		}
	}

	for _, rel := range dirs {
		if err := os.MkdirAll(filepath.Join(targetDir, rel), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", rel, err)
		}
	}
	for _, rel := range files {
		src := filepath.Join(stagingDir, rel)
		dst := filepath.Join(targetDir, rel)
		if err := moveFile(src, dst); err != nil {
			return nil, fmt.Errorf("placing %s: %w", rel, err)
		}
	}
	return files, nil
}

// moveFile renames src to dst, falling back to a copy when the two sit on
// different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Remove(src)
}
