package server

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	writes [][]byte
	err    error
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, bytes.Clone(b))
	return len(b), nil
}

func TestWriteStatus(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusNotFound, "HTTP/1.1 404 Not Found\r\n\r\n"},
		{http.StatusInternalServerError, "HTTP/1.1 500 Internal Server Error\r\n\r\n"},
		{http.StatusBadRequest, "HTTP/1.1 400 Bad Request\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeStatus(&buf, tt.code))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteFile(t *testing.T) {
	w := &recordingWriter{}

	n, err := writeFile(w, []byte("Hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, w.writes, 2, "header and body are written separately")
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 2\r\n\r\n", string(w.writes[0]))
	assert.Equal(t, "Hi", string(w.writes[1]))
}

func TestWriteFileHeaderError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broken pipe")}

	n, err := writeFile(w, []byte("Hi"))
	assert.Error(t, err)
	assert.Zero(t, n)
}
