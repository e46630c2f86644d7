package retitle

import "net/http"

// ResponseWriterWrapper records the status code written to a ResponseWriter.
type ResponseWriterWrapper struct {
	status int
	bytes  int
	http.ResponseWriter
}

func (rww *ResponseWriterWrapper) Status() int {
	return rww.status
}

// Written is the number of body bytes written.
func (rww *ResponseWriterWrapper) Written() int {
	return rww.bytes
}

func (rww *ResponseWriterWrapper) Write(data []byte) (int, error) {
	n, err := rww.ResponseWriter.Write(data)
	rww.bytes += n
	return n, err
}

func (rww *ResponseWriterWrapper) WriteHeader(statusCode int) {
	rww.status = statusCode
	rww.ResponseWriter.WriteHeader(statusCode)
}

func NewResponseWriterWrapper(rww http.ResponseWriter) *ResponseWriterWrapper {
	return &ResponseWriterWrapper{status: http.StatusOK, ResponseWriter: rww}
}
