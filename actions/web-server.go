package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/helper"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/pipe"
)

type WebServerConfig struct {
	Scheme   string           `errorTxt:"scheme" mandatory:"no"`
	Addr     net.IP           `errorTxt:"address" mandatory:"no"`
	Port     int              `errorTxt:"port" mandatory:"no"` // 0 picks a free port
	Pipeline *CountryPipeline `errorTxt:"pipeline" mandatory:"yes"`
}

// server holds the state shared by the HTTP handlers.
type server struct {
	log      logger.Logger
	pipeline *CountryPipeline
	runs     *pipe.Registry
	baseCtx  context.Context // parent of every run; cancelled on shutdown
	chanStop chan string
}

// RunWebServer serves the pipeline over HTTP until POST /stop or ctx is done.
func RunWebServer(ctx context.Context, log logger.Logger, web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := newServer(ctx, log, web.Pipeline)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.router(),
	}
	chanServeErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			chanServeErr <- err
		}
		close(chanServeErr)
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	select {
	case <-s.chanStop:
	case <-ctx.Done():
	case err := <-chanServeErr:
		if err != nil {
			return err
		}
	}
	log.Info("Shutting down web server...")
	s.runs.StopAll()
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*15)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(ctx context.Context, log logger.Logger, p *CountryPipeline) *server {
	return &server{
		log:      log,
		pipeline: p,
		runs:     pipe.NewRegistry(),
		baseCtx:  ctx,
		chanStop: make(chan string, 1),
	}
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(s.handleHealth)
	r.Path("/runs").Methods(http.MethodPost).HandlerFunc(s.handleRunLaunch)
	r.Path("/runs").Methods(http.MethodGet).HandlerFunc(s.handleRunList)
	r.Path("/runs/{runId}").Methods(http.MethodGet).HandlerFunc(s.handleRunStatus)
	r.Path("/runs/{runId}/stop").Methods(http.MethodPost).HandlerFunc(s.handleRunStop)
	r.Path("/stages/{stage}").Methods(http.MethodPost).HandlerFunc(s.handleStageLaunch)
	r.Path("/stop").Methods(http.MethodPost).HandlerFunc(s.handleStopServer)
	return r
}

// launch registers and starts a run in the background.
// It returns pipe.ErrRunInProgress if another run has not finished.
func (s *server) launch(stages ...string) (*pipe.Run, error) {
	r, err := s.pipeline.NewRun(stages...)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Begin(r); err != nil {
		return nil, err
	}
	go func() {
		_ = r.Execute(s.baseCtx) // the outcome is kept in the run status
	}()
	return r, nil
}
