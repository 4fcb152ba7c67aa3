package server

import (
	"bytes"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// truncatedFile reports the size of the whole content but only yields the
// first n bytes, like a file truncated between the size query and the read.
type truncatedFile struct {
	*bytes.Reader
	n int64
}

func (f *truncatedFile) Read(p []byte) (int, error) {
	pos, _ := f.Reader.Seek(0, io.SeekCurrent)
	if pos >= f.n {
		return 0, io.EOF
	}
	if int64(len(p)) > f.n-pos {
		p = p[:f.n-pos]
	}
	return f.Reader.Read(p)
}

// shortFile is a regular file whose content ends early.
type shortFile struct {
	*truncatedFile
	info fs.FileInfo
}

func (f *shortFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *shortFile) Close() error               { return nil }

func TestHandleConnectionShortReadSendsNothing(t *testing.T) {
	root := t.TempDir()
	name := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(name, []byte("0123456789"), 0o644))
	info, err := os.Stat(name)
	require.NoError(t, err)

	s := &Server{
		Root: root,
		openFile: func(string) (seekFile, error) {
			return &shortFile{
				truncatedFile: &truncatedFile{Reader: bytes.NewReader([]byte("0123456789")), n: 5},
				info:          info,
			}, nil
		},
	}

	client, conn := net.Pipe()
	defer client.Close()
	done := make(chan error, 1)
	go func() { done <- s.handleConnection(conn) }()

	_, err = io.WriteString(client, "GET /index.html HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	response, err := io.ReadAll(client)
	require.NoError(t, err)
	assert.Empty(t, response)
	assert.ErrorIs(t, <-done, ErrShortRead)
}

func TestReadFileThroughRegularFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("Hi"), 0o644))

	for _, confine := range []bool{false, true} {
		s := &Server{Root: root, Confine: confine}
		_, err := s.readFile("/index.html/x")
		assert.ErrorIs(t, err, fs.ErrNotExist, "confine=%v", confine)
	}
}

func TestReadAllShortRead(t *testing.T) {
	f := &truncatedFile{Reader: bytes.NewReader([]byte("0123456789")), n: 5}

	_, err := readAll(f)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReadAllRewinds(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)

	body, err := readAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(body))
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("Hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dir", "empty.txt"), nil, 0o644))

	s := &Server{Root: root}

	body, err := s.readFile("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "Hi", string(body))

	body, err = s.readFile("/dir/empty.txt")
	require.NoError(t, err)
	assert.Empty(t, body)

	_, err = s.readFile("/missing.html")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = s.readFile("/")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = s.readFile("/dir")
	assert.ErrorIs(t, err, ErrNotRegular)
}

func TestReadFileConfine(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "www")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("Hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0o644))

	open := &Server{Root: root}
	body, err := open.readFile("/../secret.txt")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(body))

	confined := &Server{Root: root, Confine: true}
	_, err = confined.readFile("/../secret.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	body, err = confined.readFile("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "Hi", string(body))
}
