package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"timetracker/config"
	"timetracker/entity"
	"timetracker/export"
	"timetracker/manager"
	"timetracker/query"
)

//go:embed static/*
var staticFS embed.FS

type Server struct {
	mgr    *manager.AttendanceManager
	cfg    *config.Config
	log    logrus.FieldLogger
	router *mux.Router
	http   *http.Server
}

func NewServer(mgr *manager.AttendanceManager, cfg *config.Config) *Server {
	s := &Server{mgr: mgr, cfg: cfg, log: cfg.Logger().WithField("component", "web")}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/employees", s.handleListEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employees", s.handleAddEmployee).Methods(http.MethodPost)
	api.HandleFunc("/clock_in", s.handleClock(mgr.ClockIn)).Methods(http.MethodPost)
	api.HandleFunc("/clock_out", s.handleClock(mgr.ClockOut)).Methods(http.MethodPost)
	api.HandleFunc("/activities", s.handleActivities).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
// It returns the bound address, which differs from the configured one when
// the port is 0.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.cfg.Web.Addr)
	if err != nil {
		return "", err
	}
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	addr := ln.Addr().String()
	go func() {
		s.log.Infof("web UI available on http://%s", addr)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("web server stopped")
		}
	}()
	return addr, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		s.log.WithError(err).Error("read index page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Debug("write index page")
	}
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.EmployeeNames())
}

type nameRequest struct {
	Name string `json:"name"`
}

// maxBodyBytes bounds request bodies; a name is a few bytes.
const maxBodyBytes = 1 << 16

func decodeName(w http.ResponseWriter, r *http.Request) (string, error) {
	var body nameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", err
	}
	return body.Name, nil
}

func (s *Server) handleAddEmployee(w http.ResponseWriter, r *http.Request) {
	name, err := decodeName(w, r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	st, err := s.mgr.AddEmployee(name)
	s.writeStatus(w, st, err)
}

func (s *Server) handleClock(op func(string) (manager.Status, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := decodeName(w, r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		st, err := op(name)
		s.writeStatus(w, st, err)
	}
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.filteredRows(r))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="activities.xlsx"`)
	if err := export.WriteXLSX(w, s.filteredRows(r)); err != nil {
		s.log.WithError(err).Error("xlsx export failed")
	}
}

// handleSummary serves per employee totals for ?period=day|week|month|year|all.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	items, err := query.Summarize(s.cfg.Export.SQLiteDriver, s.mgr.Employees(), period, time.Now())
	if err != nil {
		s.log.WithError(err).Error("summary failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) filteredRows(r *http.Request) []entity.ActivityRow {
	q := r.URL.Query()
	return s.mgr.FilteredActivities(q.Get("employee"), q.Get("date"))
}

func (s *Server) writeStatus(w http.ResponseWriter, st manager.Status, err error) {
	if err != nil {
		s.log.WithError(err).Error("operation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	code := http.StatusOK
	switch st.Reason {
	case manager.ReasonNotFound:
		code = http.StatusNotFound
	case manager.ReasonInvalidName, manager.ReasonDuplicate, manager.ReasonNoSelection:
		code = http.StatusBadRequest
	}
	writeJSON(w, code, st)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
