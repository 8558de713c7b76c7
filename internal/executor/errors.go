package executor

import "fmt"

// TransportError reports a dispatch failure: client setup, proxy, DNS,
// connect, TLS, timeout or reading the body.
type TransportError struct {
	Op    string
	Proxy string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
