package tarball

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexreg/hexreg/metadata"
)

func TestUnpackEmptyPackage(t *testing.T) {
	build, err := Create(metadata.Metadata{"name": "ecto"}, nil)
	require.NoError(t, err)

	pkg, err := Unpack(build.Tarball)
	require.NoError(t, err)
	assert.Equal(t, build.InnerChecksum, pkg.InnerChecksum)
	assert.Equal(t, build.OuterChecksum, pkg.OuterChecksum)
	assert.Empty(t, pkg.Contents)
	assert.Equal(t, metadata.Metadata{
		"name":        "ecto",
		"build_tools": []any{},
	}, pkg.Metadata)
}

func TestUnpackRoundTrip(t *testing.T) {
	meta := metadata.Metadata{
		"name":    "foo",
		"version": "1.0.0",
		"files":   []any{"mix.exs", "src/foo.erl"},
	}
	files := []File{
		{Name: "mix.exs", Data: []byte("defmodule Foo do end")},
		{Name: "src/foo.erl", Data: []byte("-module(foo).")},
	}
	build, err := Create(meta, files)
	require.NoError(t, err)

	pkg, err := Unpack(build.Tarball)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"mix.exs":     []byte("defmodule Foo do end"),
		"src/foo.erl": []byte("-module(foo)."),
	}, pkg.Contents)
	assert.Equal(t, "foo", pkg.Metadata["name"])
	assert.Equal(t, []any{"mix"}, pkg.Metadata["build_tools"])
}

func TestUnpackTooBig(t *testing.T) {
	_, err := Unpack(make([]byte, MaxOuterSize+1))
	assert.ErrorIs(t, err, ErrTooBig)
}

func TestUnpackEmptyArchive(t *testing.T) {
	empty, err := writeTar(nil)
	require.NoError(t, err)
	_, err = Unpack(empty)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestUnpackGarbage(t *testing.T) {
	_, err := Unpack([]byte("not a tarball at all"))
	require.Error(t, err)
	var archiveErr *ArchiveError
	assert.ErrorAs(t, err, &archiveErr)
}

func TestUnpackMissingFiles(t *testing.T) {
	members := buildMembers(t)
	delete(members, "metadata.config")
	_, err := Unpack(rebuildOuter(t, members))

	var missing *MissingFilesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"metadata.config"}, missing.Files)
}

func TestUnpackInvalidFiles(t *testing.T) {
	members := buildMembers(t)
	members["extra"] = []byte("surprise")
	_, err := Unpack(rebuildOuter(t, members))

	var invalid *InvalidFilesError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"extra"}, invalid.Files)
}

func TestUnpackInvalidFilesWinsOverMissing(t *testing.T) {
	members := buildMembers(t)
	delete(members, "metadata.config")
	members["extra"] = []byte("surprise")
	_, err := Unpack(rebuildOuter(t, members))

	var invalid *InvalidFilesError
	assert.ErrorAs(t, err, &invalid)
}

func TestUnpackBadVersion(t *testing.T) {
	members := buildMembers(t)
	members["VERSION"] = []byte("2")
	_, err := Unpack(rebuildOuter(t, members))

	var bad *BadVersionError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "2", bad.Version)
}

func TestUnpackInvalidInnerChecksum(t *testing.T) {
	members := buildMembers(t)
	members["CHECKSUM"] = []byte("abcd")
	_, err := Unpack(rebuildOuter(t, members))
	assert.ErrorIs(t, err, ErrInvalidInnerChecksum)
}

func TestUnpackInnerChecksumMismatch(t *testing.T) {
	members := buildMembers(t)
	members["contents.tar.gz"][len(members["contents.tar.gz"])-1] ^= 0xff
	_, err := Unpack(rebuildOuter(t, members))

	var mismatch *InnerChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.NotEqual(t, mismatch.Expected, mismatch.Actual)
}

func TestUnpackLowercaseChecksumAccepted(t *testing.T) {
	members := buildMembers(t)
	members["CHECKSUM"] = []byte(strings.ToLower(string(members["CHECKSUM"])))
	_, err := Unpack(rebuildOuter(t, members))
	require.NoError(t, err)
}

func TestUnpackToDisk(t *testing.T) {
	meta := metadata.Metadata{"name": "foo", "version": "1.0.0"}
	build, err := Create(meta, []File{
		{Name: "src/foo.erl", Data: []byte("-module(foo).")},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	pkg, err := UnpackTo(build.Tarball, dir)
	require.NoError(t, err)
	assert.Nil(t, pkg.Contents)

	content, err := os.ReadFile(filepath.Join(dir, "src", "foo.erl"))
	require.NoError(t, err)
	assert.Equal(t, []byte("-module(foo)."), content)

	members, err := readTar(build.Tarball)
	require.NoError(t, err)
	rawMeta, err := os.ReadFile(filepath.Join(dir, "hex_metadata.config"))
	require.NoError(t, err)
	assert.Equal(t, members["metadata.config"], rawMeta)
}

// buildMembers creates a valid outer tarball and returns its members for
// tests that corrupt individual pieces.
func buildMembers(t *testing.T) map[string][]byte {
	t.Helper()
	build, err := Create(metadata.Metadata{"name": "foo"}, []File{
		{Name: "src/foo.erl", Data: []byte("-module(foo).")},
	})
	require.NoError(t, err)
	members, err := readTar(build.Tarball)
	require.NoError(t, err)
	return members
}

// rebuildOuter reassembles an outer tarball from members, preserving the
// canonical order and appending any extras at the end.
func rebuildOuter(t *testing.T, members map[string][]byte) []byte {
	t.Helper()
	var files []File
	seen := make(map[string]bool)
	for _, name := range requiredFiles {
		if data, ok := members[name]; ok {
			files = append(files, File{Name: name, Data: data})
			seen[name] = true
		}
	}
	for name, data := range members {
		if !seen[name] {
			files = append(files, File{Name: name, Data: data})
		}
	}
	out, err := writeTar(files)
	require.NoError(t, err)
	return out
}
