// Package profiling serves runtime profiles for long-running commands.
package profiling

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
)

const readHeaderTimeout = 5 * time.Second

// NewPprofHandler returns a mux with the standard /debug/pprof endpoints.
func NewPprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer serves profiles on localhost:port in the background.
// A zero port disables it. The returned server can be shut down by the caller.
func StartPprofServer(port int, log infralogger.Logger) *http.Server {
	if port == 0 {
		return nil
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("localhost", strconv.Itoa(port)),
		Handler:           NewPprofHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info("Starting pprof server", infralogger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", infralogger.Error(err))
		}
	}()

	return srv
}
