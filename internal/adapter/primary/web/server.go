package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"caffeine/internal/domain"
	"caffeine/internal/logging"
	"caffeine/internal/usecase"
)

// Server is a primary adapter that exposes HTTP API + UI.
// It depends on the use case (primary port).
type Server struct {
	usecase usecase.KeepAwakeUseCase
	server  *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(uc usecase.KeepAwakeUseCase, addr string) *Server {
	srv := &Server{usecase: uc}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(srv.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the routes without the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, http.StatusOK, statusToView(s.usecase.Status()))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, http.StatusOK, statusToView(s.usecase.TogglePause()))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, SettingsToView(s.usecase.Settings()))
	case http.MethodPut:
		var req updatePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		settings, err := req.apply(s.usecase.Settings())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.usecase.UpdateSettings(settings); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respondJSON(w, http.StatusOK, SettingsToView(s.usecase.Settings()))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// StatusView is the JSON form of domain.Status.
type StatusView struct {
	Icon            string `json:"icon" yaml:"icon"`
	Text            string `json:"text" yaml:"text"`
	Paused          bool   `json:"paused" yaml:"paused"`
	OutsideSchedule bool   `json:"outsideSchedule" yaml:"outsideSchedule"`
	Running         bool   `json:"running" yaml:"running"`
	Pings           uint64 `json:"pings" yaml:"pings"`
}

func statusToView(st domain.Status) StatusView {
	return StatusView{
		Icon:            st.Icon.String(),
		Text:            st.Text,
		Paused:          st.Paused,
		OutsideSchedule: st.OutsideSchedule,
		Running:         st.Running,
		Pings:           st.Pings,
	}
}

// SettingsView is the JSON/YAML form of domain.Settings, shared with the CLI.
type SettingsView struct {
	ScheduleEnabled     bool     `json:"scheduleEnabled" yaml:"scheduleEnabled"`
	StartTime           string   `json:"startTime" yaml:"startTime"`
	EndTime             string   `json:"endTime" yaml:"endTime"`
	ActiveDays          []string `json:"activeDays" yaml:"activeDays"`
	StartWithSystem     bool     `json:"startWithSystem" yaml:"startWithSystem"`
	PingIntervalSeconds int      `json:"pingIntervalSeconds" yaml:"pingIntervalSeconds"`
	KeepDisplayOn       bool     `json:"keepDisplayOn" yaml:"keepDisplayOn"`
}

// SettingsToView converts settings for display.
func SettingsToView(s domain.Settings) SettingsView {
	days := make([]string, 0, 7)
	for _, d := range s.Schedule.ActiveDays.Days() {
		days = append(days, d.String())
	}
	return SettingsView{
		ScheduleEnabled:     s.Schedule.Enabled,
		StartTime:           s.Schedule.Start.String(),
		EndTime:             s.Schedule.End.String(),
		ActiveDays:          days,
		StartWithSystem:     s.StartWithSystem,
		PingIntervalSeconds: s.Service.IntervalSeconds,
		KeepDisplayOn:       s.Service.KeepDisplayOn,
	}
}

type updatePayload struct {
	ScheduleEnabled     *bool     `json:"scheduleEnabled"`
	StartTime           *string   `json:"startTime"`
	EndTime             *string   `json:"endTime"`
	ActiveDays          *[]string `json:"activeDays"`
	StartWithSystem     *bool     `json:"startWithSystem"`
	PingIntervalSeconds *int      `json:"pingIntervalSeconds"`
	KeepDisplayOn       *bool     `json:"keepDisplayOn"`
}

func (p updatePayload) apply(s domain.Settings) (domain.Settings, error) {
	if p.ScheduleEnabled != nil {
		s.Schedule.Enabled = *p.ScheduleEnabled
	}
	if p.StartTime != nil {
		t, err := domain.ParseTimeOfDay(*p.StartTime)
		if err != nil {
			return s, err
		}
		s.Schedule.Start = t
	}
	if p.EndTime != nil {
		t, err := domain.ParseTimeOfDay(*p.EndTime)
		if err != nil {
			return s, err
		}
		s.Schedule.End = t
	}
	if p.ActiveDays != nil {
		var days domain.WeekdaySet
		for _, name := range *p.ActiveDays {
			d, err := domain.ParseWeekday(name)
			if err != nil {
				return s, err
			}
			days = days.With(d)
		}
		s.Schedule.ActiveDays = days
	}
	if p.StartWithSystem != nil {
		s.StartWithSystem = *p.StartWithSystem
	}
	if p.PingIntervalSeconds != nil {
		s.Service.IntervalSeconds = *p.PingIntervalSeconds
	}
	if p.KeepDisplayOn != nil {
		s.Service.KeepDisplayOn = *p.KeepDisplayOn
	}
	return s, nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warnf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
