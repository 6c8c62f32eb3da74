package actions

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/pipe"
	"github.com/relloyd/country-metrics/stats"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		return nil, fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseHealth struct {
	Status      WebServerResponse `json:"status"`
	ActiveRunId string            `json:"activeRunId,omitempty"`
}

type ResponseRunLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId,omitempty"`
}

type ResponseRunList struct {
	Status WebServerResponse `json:"status"`
	Runs   []pipe.RunStatus  `json:"runs"`
}

type ResponseRunStatus struct {
	Status    WebServerResponse `json:"status"`
	Message   string            `json:"message"`
	RunStatus *pipe.RunStatus   `json:"run,omitempty"`
	RunStats  []stats.Stats     `json:"runStats,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := ResponseHealth{Status: Okay}
	if run, ok := s.runs.Active(); ok {
		resp.ActiveRunId = run.Id
	}
	respond(s.log, w, http.StatusOK, resp)
}

func (s *server) handleStopServer(w http.ResponseWriter, r *http.Request) {
	select {
	case s.chanStop <- "stop":
		s.log.Info("Stop signal sent")
	default: // already stopping
	}
	respond(s.log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
}

func (s *server) handleRunLaunch(w http.ResponseWriter, r *http.Request) {
	s.respondLaunch(w)
}

func (s *server) handleStageLaunch(w http.ResponseWriter, r *http.Request) {
	s.respondLaunch(w, mux.Vars(r)["stage"])
}

func (s *server) respondLaunch(w http.ResponseWriter, stages ...string) {
	run, err := s.launch(stages...)
	switch {
	case err == pipe.ErrRunInProgress:
		s.log.Info("HTTP request to launch a run was rejected: ", err)
		respond(s.log, w, http.StatusConflict, ResponseRunLaunch{Status: Error, Message: err.Error()})
	case err != nil:
		s.log.Error(err)
		respond(s.log, w, http.StatusBadRequest, ResponseRunLaunch{Status: Error, Message: err.Error()})
	default:
		respond(s.log, w, http.StatusAccepted, ResponseRunLaunch{Status: Okay, Message: "run launched", RunId: run.Id})
	}
}

func (s *server) handleRunList(w http.ResponseWriter, r *http.Request) {
	respond(s.log, w, http.StatusOK, ResponseRunList{Status: Okay, Runs: s.runs.List()})
}

func (s *server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["runId"]
	run, ok := s.runs.Load(id)
	if !ok {
		s.log.Info("HTTP request for status of run ", id, " that doesn't exist.")
		respond(s.log, w, http.StatusNotFound, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
		return
	}
	st := run.Status()
	respond(s.log, w, http.StatusOK, ResponseRunStatus{Status: Okay, RunStatus: &st, RunStats: run.GetStats()})
}

func (s *server) handleRunStop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["runId"]
	run, ok := s.runs.Load(id)
	if !ok {
		respond(s.log, w, http.StatusNotFound, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
		return
	}
	st := run.Status()
	if st.IsFinished() {
		respond(s.log, w, http.StatusOK, ResponseRunStatus{Status: Error, Message: "run already ended", RunStatus: &st})
		return
	}
	run.Stop()
	respond(s.log, w, http.StatusOK, ResponseRunStatus{Status: Okay, Message: "shutting down", RunStatus: &st})
}

// respond writes the status code and i marshalled as JSON.
func respond(log logger.Logger, w http.ResponseWriter, code int, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(j); err != nil {
		log.Warn("error writing HTTP response: ", err)
	}
}
