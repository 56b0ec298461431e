package tarball

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hexreg/hexreg/metadata"
)

// extractWorkers bounds concurrent file writes during on-disk unpack.
const extractWorkers = 8

// Package is the result of unpacking a tarball.
type Package struct {
	// InnerChecksum is the checksum embedded in the CHECKSUM member.
	InnerChecksum Checksum

	// OuterChecksum is SHA-256 over the tarball bytes.
	OuterChecksum Checksum

	// Metadata is the decoded and normalized metadata mapping.
	Metadata metadata.Metadata

	// Contents maps file paths to content. Nil when unpacking to disk.
	Contents map[string][]byte
}

// Unpack validates a package tarball and returns its contents in memory.
//
// Validation short-circuits: size cap, archive parse, member set, version,
// inner checksum, metadata, then contents extraction; the first failure is
// the result.
func Unpack(tb []byte) (*Package, error) {
	return unpack(tb, "")
}

// UnpackTo validates a package tarball and extracts its contents into dir.
// The raw metadata is written verbatim as hex_metadata.config alongside the
// files, and every extracted path gets a current mtime (failures ignored,
// e.g. dangling symlinks). The returned Package has no Contents.
func UnpackTo(tb []byte, dir string) (*Package, error) {
	return unpack(tb, dir)
}

func unpack(tb []byte, dir string) (*Package, error) {
	if len(tb) > MaxOuterSize {
		return nil, ErrTooBig
	}

	files, err := readTar(tb)
	if err != nil {
		return nil, &ArchiveError{Err: err}
	}
	if len(files) == 0 {
		return nil, ErrEmpty
	}

	if err := checkFiles(files); err != nil {
		return nil, err
	}
	if v := string(files["VERSION"]); v != Version {
		return nil, &BadVersionError{Version: v}
	}

	innerChk, err := checkInnerChecksum(files)
	if err != nil {
		return nil, err
	}

	metaBytes := files["metadata.config"]
	meta, err := metadata.Decode(metaBytes)
	if err != nil {
		return nil, err
	}
	metadata.Normalize(meta)

	inner, err := gunzip(files["contents.tar.gz"], MaxInnerSize)
	if err != nil {
		if errors.Is(err, ErrTooBig) {
			return nil, err
		}
		return nil, &ArchiveError{Inner: true, Err: err}
	}

	pkg := &Package{
		InnerChecksum: innerChk,
		OuterChecksum: NewChecksum(tb),
		Metadata:      meta,
	}

	if dir == "" {
		contents, err := readTar(inner)
		if err != nil {
			return nil, &ArchiveError{Inner: true, Err: err}
		}
		pkg.Contents = contents
		return pkg, nil
	}

	if err := extractTar(inner, dir); err != nil {
		return nil, &ArchiveError{Inner: true, Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, "hex_metadata.config"), metaBytes, 0o644); err != nil {
		return nil, err
	}
	touchAll(dir)
	return pkg, nil
}

// checkFiles verifies the outer member set. Unexpected members win over
// missing ones when both conditions hold.
func checkFiles(files map[string][]byte) error {
	required := make(map[string]bool, len(requiredFiles))
	for _, name := range requiredFiles {
		required[name] = true
	}

	var invalid []string
	for name := range files {
		if !required[name] {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &InvalidFilesError{Files: invalid}
	}

	var missing []string
	for _, name := range requiredFiles {
		if _, ok := files[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingFilesError{Files: missing}
	}
	return nil
}

func checkInnerChecksum(files map[string][]byte) (Checksum, error) {
	var embedded Checksum
	decoded, err := hex.DecodeString(string(files["CHECKSUM"]))
	if err != nil || len(decoded) != sha256.Size {
		return embedded, ErrInvalidInnerChecksum
	}
	copy(embedded[:], decoded)

	actual := NewChecksum(concat(files["VERSION"], files["metadata.config"], files["contents.tar.gz"]))
	if actual != embedded {
		return embedded, &InnerChecksumMismatchError{Expected: embedded, Actual: actual}
	}
	return embedded, nil
}

// extractTar writes an inner tarball to dir. Directories and symlinks are
// created up front; regular file writes fan out over a bounded worker pool.
func extractTar(data []byte, dir string) error {
	type regFile struct {
		path    string
		mode    os.FileMode
		content []byte
	}
	var regs []regFile

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		path := filepath.Join(dir, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, os.FileMode(hdr.Mode)&os.ModePerm); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				return err
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return err
			}
			regs = append(regs, regFile{path: path, mode: os.FileMode(hdr.Mode) & os.ModePerm, content: content})
		}
	}

	var g errgroup.Group
	g.SetLimit(extractWorkers)
	for _, f := range regs {
		f := f
		g.Go(func() error {
			if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
				return err
			}
			return os.WriteFile(f.path, f.content, f.mode)
		})
	}
	return g.Wait()
}

// touchAll sets the mtime of every path under dir to now, ignoring
// failures such as dangling symlinks.
func touchAll(dir string) {
	now := time.Now()
	_ = filepath.Walk(dir, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		_ = os.Chtimes(path, now, now)
		return nil
	})
}
