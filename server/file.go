package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

var (
	ErrShortRead   = errors.New("file shorter than its reported size")
	ErrNotRegular  = errors.New("not a regular file")
	errEscapesRoot = fmt.Errorf("path escapes root: %w", fs.ErrNotExist)
)

// seekFile is the part of *os.File needed to serve it.
type seekFile interface {
	fs.File
	io.Seeker
}

// readFile resolves a request path against the server root and returns the
// full file contents. Missing files yield an error matching fs.ErrNotExist.
func (s *Server) readFile(path string) ([]byte, error) {
	name := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if name == "" {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	open := s.open
	if s.openFile != nil {
		open = s.openFile
	}
	f, err := open(name)
	if errors.Is(err, syscall.ENOTDIR) {
		// A file was used as a directory somewhere along the path.
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRegular)
	}

	body, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return body, nil
}

func (s *Server) open(name string) (seekFile, error) {
	var (
		f   *os.File
		err error
	)
	if s.Confine {
		f, err = s.openConfined(name)
	} else {
		if s.Root != "" && !filepath.IsAbs(name) {
			name = filepath.Join(s.Root, name)
		}
		f, err = os.Open(name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Server) openConfined(name string) (*os.File, error) {
	if !filepath.IsLocal(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errEscapesRoot}
	}
	root, err := os.OpenRoot(s.rootDir())
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	defer root.Close()
	return root.Open(name)
}

func (s *Server) rootDir() string {
	if s.Root == "" {
		return "."
	}
	return s.Root
}

// readAll reads exactly as many bytes as the seek-reported size of f.
func readAll(f io.ReadSeeker) ([]byte, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, err
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(f, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortRead
		}
		return nil, err
	}
	return body, nil
}

// fileSize seeks to the end of f and back to the start.
func fileSize(f io.Seeker) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek end: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek start: %w", err)
	}
	return size, nil
}
