package server

import (
	"io"
	"net/http"
	"strconv"
)

const (
	responseProto = "HTTP/1.1"
	contentType   = "text/html"
)

var nlcf = []byte{0x0d, 0x0a}

// responseHeader is a status line plus header fields kept in insertion
// order, so the wire format stays fixed.
type responseHeader struct {
	statusCode int
	fields     [][2]string
}

func (h *responseHeader) add(key, value string) {
	h.fields = append(h.fields, [2]string{key, value})
}

func (h *responseHeader) appendTo(b []byte) []byte {
	b = append(b, responseProto...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(h.statusCode), 10)
	b = append(b, ' ')
	b = append(b, http.StatusText(h.statusCode)...)
	b = append(b, nlcf...)
	for _, f := range h.fields {
		b = append(b, f[0]...)
		b = append(b, ':', ' ')
		b = append(b, f[1]...)
		b = append(b, nlcf...)
	}
	return append(b, nlcf...)
}

// writeStatus sends a bodiless response consisting of the status line only.
func writeStatus(w io.Writer, statusCode int) error {
	h := responseHeader{statusCode: statusCode}
	_, err := w.Write(h.appendTo(nil))
	return err
}

// writeFile sends a 200 response in two writes: the header block, then
// the body. It returns the number of body bytes accepted by w.
func writeFile(w io.Writer, body []byte) (int, error) {
	h := responseHeader{statusCode: http.StatusOK}
	h.add("Content-Type", contentType)
	h.add("Content-Length", strconv.Itoa(len(body)))

	if _, err := w.Write(h.appendTo(nil)); err != nil {
		return 0, err
	}
	return w.Write(body)
}
