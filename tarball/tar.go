package tarball

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// epoch is the fixed timestamp written for every tar entry. Constant
// timestamps are part of the reproducibility contract.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// File is one entry for the inner tarball. Data takes precedence when set;
// otherwise Path is read from the filesystem, defaulting to Name.
type File struct {
	// Name is the path of the entry inside the archive.
	Name string

	// Path is the filesystem source. Empty means Name.
	Path string

	// Data is inline content. Entries synthesized from bytes get mode 0644.
	Data []byte
}

// writeTar streams entries into an in-memory tar archive with the fixed
// timestamp and ownership policy applied to every header.
func writeTar(files []File) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		if err := writeEntry(tw, f); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("tarball: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(tw *tar.Writer, f File) error {
	if f.Data != nil {
		hdr := newHeader(f.Name, 0o644, int64(len(f.Data)), tar.TypeReg)
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tarball: write header %s: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return fmt.Errorf("tarball: write %s: %w", f.Name, err)
		}
		return nil
	}

	src := f.Path
	if src == "" {
		src = f.Name
	}
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("tarball: %w", err)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return fmt.Errorf("tarball: %w", err)
		}
		hdr := newHeader(f.Name, int64(info.Mode().Perm()), 0, tar.TypeSymlink)
		hdr.Linkname = target
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tarball: write header %s: %w", f.Name, err)
		}
	case info.IsDir():
		entries, err := os.ReadDir(src)
		if err != nil {
			return fmt.Errorf("tarball: %w", err)
		}
		if len(entries) > 0 {
			// Non-empty directories are implied by their contained files.
			return nil
		}
		hdr := newHeader(f.Name+"/", int64(info.Mode().Perm()), 0, tar.TypeDir)
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tarball: write header %s: %w", f.Name, err)
		}
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("tarball: %w", err)
		}
		hdr := newHeader(f.Name, int64(info.Mode().Perm()), int64(len(data)), tar.TypeReg)
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("tarball: write header %s: %w", f.Name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("tarball: write %s: %w", f.Name, err)
		}
	}
	return nil
}

func newHeader(name string, mode, size int64, typeflag byte) *tar.Header {
	return &tar.Header{
		Name:     name,
		Mode:     mode,
		Size:     size,
		Typeflag: typeflag,
		ModTime:  epoch,
		Uid:      0,
		Gid:      0,
		Format:   tar.FormatUSTAR,
	}
}

// readTar extracts an archive into a name-to-content mapping. Only regular
// files carry content; other entry types are skipped.
func readTar(data []byte) (map[string][]byte, error) {
	out := make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		out[hdr.Name] = content
	}
}
