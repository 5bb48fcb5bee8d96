package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/study"
)

// progress is the run state served by the progress server.
type progress struct {
	mu       sync.Mutex
	Case     string   `json:"case"`
	Point    int      `json:"point"`
	Total    int      `json:"total"`
	Failed   int      `json:"failed"`
	Finished []string `json:"finished"`
}

func (p *progress) start(name string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Case, p.Point, p.Total, p.Failed = name, 0, total, 0
}

func (p *progress) point(pt study.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Point = pt.Index + 1
	if pt.Failed() {
		p.Failed++
	}
}

func (p *progress) finish(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Finished = append(p.Finished, name)
}

func (p *progress) snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return json.Marshal(p)
}

// healthHandler reports that the process is alive.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// progressHandler serves the current case and point as JSON.
func (a *App) progressHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Progress endpoint hit.", "remote_addr", r.RemoteAddr)
	body, err := a.progress.snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/progress", a.progressHandler)
	return mux
}

// startProgressServer runs the health and progress server in the background.
func (a *App) startProgressServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	addr := fmt.Sprintf(":%d", a.config.ProgressPort)
	a.httpServer = &http.Server{Addr: addr, Handler: a.handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Progress server starting", "address", fmt.Sprintf("http://localhost%s/progress", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Progress server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeProgressServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down progress server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Progress server shutdown failed", "error", err)
		return err
	}
	return nil
}
