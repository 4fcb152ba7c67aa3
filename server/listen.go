package server

import (
	"fmt"
	"net"
)

// BindError reports a failure to create, bind or listen on the server socket.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Listen opens an IPv4 TCP listener on addr with the given connection backlog.
func Listen(addr string, backlog int) (net.Listener, error) {
	l, err := listen(addr, backlog)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return l, nil
}
