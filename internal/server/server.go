package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/teamboard-dev/teamboard-server/internal/event"
	"github.com/teamboard-dev/teamboard-server/internal/logger"
)

type ShutdownCallback struct {
	srv *http.Server
}

func (sc *ShutdownCallback) Invoke(ctx context.Context) error {
	logger.InfoF("Shutting down HTTP server")
	return sc.srv.Shutdown(ctx)
}

// StartServer serves the REST API and the relay websocket endpoint on the
// given port. It blocks until the listener fails or a shutdown hook closes
// it. Only the header read is bounded here: a server-wide read timeout
// would kill long-lived relay connections.
func StartServer(port int, handler http.Handler) {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	event.NewCleaner().Add(&ShutdownCallback{srv: srv})

	logger.InfoF("Teamboard server listen on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.FatalF("Teamboard server start error: %v", err)
	}
}
