package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"
)

func (s *Server) handleConnection(conn net.Conn) error {
	defer conn.Close()

	if s.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
	}

	raw, err := receive(conn, maxRequestSize)
	if err != nil {
		return s.reject(conn, fmt.Errorf("read request: %w", err))
	}

	path, err := parseRequestLine(raw)
	if err != nil {
		return s.reject(conn, err)
	}

	body, err := s.readFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger().Info("file not found", "remote", conn.RemoteAddr().String(), "path", path, "status", http.StatusNotFound)
		return writeStatus(conn, http.StatusNotFound)
	case errors.Is(err, ErrShortRead):
		// Nothing has been written yet; the connection is closed without a response.
		return err
	case err != nil:
		if werr := writeStatus(conn, http.StatusInternalServerError); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}

	n, err := writeFile(conn, body)
	s.logger().Info("served file", "remote", conn.RemoteAddr().String(), "path", path, "status", http.StatusOK, "bytes", n)
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// reject handles requests that could not be read or parsed. The connection is
// closed without a response unless RejectMalformed is set and the client sent
// something other than a well-formed GET.
func (s *Server) reject(conn net.Conn, err error) error {
	if !s.RejectMalformed {
		return err
	}
	if errors.Is(err, ErrMalformedRequest) || errors.Is(err, ErrRequestTooLarge) {
		if werr := writeStatus(conn, http.StatusBadRequest); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}
