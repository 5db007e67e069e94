package httpserver

import "time"

var (
	// ShutdownTimeout controls how long to wait for graceful shutdowns.
	ShutdownTimeout = 15 * time.Second

	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout = 5 * time.Second

	// WriteTimeout covers reading the body and writing the response, so it
	// must fit a full video upload.
	WriteTimeout = 10 * time.Minute

	IdleTimeout = 2 * time.Minute
)
