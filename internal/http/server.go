package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"registro/attendance/internal/auth"
	"registro/attendance/internal/config"
	"registro/attendance/internal/db"
	"registro/attendance/internal/engine"
)

type Server struct {
	cfg       config.Config
	rules     engine.Rules
	store     *db.Store
	redis     *redis.Client
	rosterTTL time.Duration
}

func NewServer(cfg config.Config, store *db.Store, redisClient *redis.Client) *Server {
	return &Server{
		cfg:       cfg,
		rules:     cfg.Rules(),
		store:     store,
		redis:     redisClient,
		rosterTTL: cfg.RosterTTL,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.authMiddleware).Post("/rosters", s.handleCreateRoster)
	r.With(s.authMiddleware).Get("/rosters/{rosterId}", s.handleGetRoster)
	r.With(s.authMiddleware).Get("/rosters/{rosterId}/report", s.handleGetReport)
	r.With(s.authMiddleware).Post("/rosters/{rosterId}/merge", s.handleMerge)
	r.With(s.authMiddleware).Post("/rosters/{rosterId}/participants", s.handleAddParticipant)
	r.With(s.authMiddleware).Post("/rosters/{rosterId}/participants/{participantId}/toggle", s.handleTogglePresence)
	r.With(s.authMiddleware).Post("/rosters/{rosterId}/participants/{participantId}/move", s.handleMoveParticipant)
	r.With(s.authMiddleware).Delete("/rosters/{rosterId}/participants/{participantId}", s.handleRemoveParticipant)
	r.With(s.authMiddleware).Post("/rosters/{rosterId}/archive", s.handleArchiveRoster)
	r.With(s.authMiddleware).Get("/archive", s.handleListArchive)
	r.With(s.authMiddleware).Get("/archive/{archiveId}", s.handleGetArchivedReport)

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// Models

type rawEventPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Join      string `json:"join"`
	Leave     string `json:"leave"`
	Organizer bool   `json:"organizer"`
}

type createRosterRequest struct {
	LessonDate string            `json:"lessonDate"`
	Scope      string            `json:"scope"`
	Subject    string            `json:"subject"`
	Morning    []rawEventPayload `json:"morning"`
	Afternoon  []rawEventPayload `json:"afternoon"`
}

type mergeRequest struct {
	TargetID string `json:"targetId"`
	SourceID string `json:"sourceId"`
}

type addParticipantRequest struct {
	Name string `json:"name"`
}

type moveParticipantRequest struct {
	Position int `json:"position"`
}

type participantView struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email,omitempty"`
	Organizer         bool              `json:"organizer"`
	Morning           []engine.Interval `json:"morning"`
	Afternoon         []engine.Interval `json:"afternoon"`
	AbsenceMinutes    int               `json:"absenceMinutes"`
	Present           bool              `json:"present"`
	MarkedAbsent      bool              `json:"markedAbsent"`
	Aliases           []engine.Alias    `json:"aliases,omitempty"`
	Hourly            []engine.HourMark `json:"hourly"`
	AttendancePercent int               `json:"attendancePercent"`
}

type rosterView struct {
	ID                string            `json:"id"`
	LessonDate        string            `json:"lessonDate"`
	Scope             engine.Scope      `json:"scope"`
	Subject           string            `json:"subject,omitempty"`
	Schedule          string            `json:"schedule"`
	LessonHours       []int             `json:"lessonHours"`
	ScheduleEstimated bool              `json:"scheduleEstimated"`
	SkippedEvents     int               `json:"skippedEvents"`
	OverlapWarnings   int               `json:"overlapWarnings"`
	Participants      []participantView `json:"participants"`
	Organizer         *participantView  `json:"organizer,omitempty"`
	Stats             engine.Stats      `json:"stats"`
}

type reportResponse struct {
	RosterID   string       `json:"rosterId"`
	LessonDate string       `json:"lessonDate"`
	Scope      engine.Scope `json:"scope"`
	Subject    string       `json:"subject,omitempty"`
	engine.Report
}

// Handlers

func (s *Server) handleCreateRoster(w http.ResponseWriter, r *http.Request) {
	var req createRosterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	scope := engine.Scope(req.Scope)
	if !scope.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_scope")
		return
	}
	if _, err := time.Parse("2006-01-02", req.LessonDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_lesson_date")
		return
	}

	res, err := engine.BuildRoster(scope, toRawEvents(req.Morning), toRawEvents(req.Afternoon), s.rules)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if res.Skipped > 0 {
		log.Printf("roster build skipped %d malformed events", res.Skipped)
	}

	record := rosterRecord{
		ID:         uuid.New(),
		LessonDate: req.LessonDate,
		Scope:      scope,
		Subject:    strings.TrimSpace(req.Subject),
		Roster:     res.Roster,
		Skipped:    res.Skipped,
		Overlaps:   res.Overlaps,
		CreatedAt:  time.Now().UTC().Unix(),
	}
	if err := s.storeRoster(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, s.rosterView(record))
}

func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.rosterView(record))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.reportView(record))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_target_id")
		return
	}
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_source_id")
		return
	}
	s.mutateRoster(w, r, record, func(roster engine.Roster) (engine.Roster, error) {
		return engine.Merge(roster, targetID, sourceID, s.rules)
	})
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	var req addParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.mutateRoster(w, r, record, func(roster engine.Roster) (engine.Roster, error) {
		return engine.AddManual(roster, req.Name)
	})
}

func (s *Server) handleTogglePresence(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	participantID, ok := participantIDParam(w, r)
	if !ok {
		return
	}
	s.mutateRoster(w, r, record, func(roster engine.Roster) (engine.Roster, error) {
		return engine.TogglePresence(roster, participantID)
	})
}

func (s *Server) handleMoveParticipant(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	participantID, ok := participantIDParam(w, r)
	if !ok {
		return
	}
	var req moveParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.mutateRoster(w, r, record, func(roster engine.Roster) (engine.Roster, error) {
		return engine.Move(roster, participantID, req.Position)
	})
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	participantID, ok := participantIDParam(w, r)
	if !ok {
		return
	}
	s.mutateRoster(w, r, record, func(roster engine.Roster) (engine.Roster, error) {
		return engine.Remove(roster, participantID)
	})
}

func (s *Server) handleArchiveRoster(w http.ResponseWriter, r *http.Request) {
	record, ok := s.requireRoster(w, r)
	if !ok {
		return
	}
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	payload, err := json.Marshal(s.reportView(record))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	lessonDate, err := time.Parse("2006-01-02", record.LessonDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	archived := db.ArchivedReport{
		ID:         uuid.New(),
		LessonDate: lessonDate,
		Scope:      string(record.Scope),
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertReport(r.Context(), archived); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if claims := claimsFromContext(r.Context()); claims != nil {
		log.Printf("roster %s archived as %s by operator %s", record.ID, archived.ID, claims.OperatorID)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"archiveId": archived.ID.String()})
}

type archivedReportResponse struct {
	ID         string          `json:"id"`
	LessonDate string          `json:"lessonDate"`
	Scope      string          `json:"scope"`
	CreatedAt  int64           `json:"createdAt"`
	Report     json.RawMessage `json:"report"`
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_from")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_to")
		return
	}

	reports, err := s.store.ListReports(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]archivedReportResponse, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, archivedReportResponse{
			ID:         rep.ID.String(),
			LessonDate: rep.LessonDate.Format("2006-01-02"),
			Scope:      rep.Scope,
			CreatedAt:  rep.CreatedAt.Unix(),
			Report:     json.RawMessage(rep.Payload),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetArchivedReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "archiveId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_archive_id")
		return
	}
	rep, err := s.store.GetReport(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "report_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, archivedReportResponse{
		ID:         rep.ID.String(),
		LessonDate: rep.LessonDate.Format("2006-01-02"),
		Scope:      rep.Scope,
		CreatedAt:  rep.CreatedAt.Unix(),
		Report:     json.RawMessage(rep.Payload),
	})
}

// Snapshot plumbing

type rosterRecord struct {
	ID         uuid.UUID     `json:"id"`
	LessonDate string        `json:"lessonDate"`
	Scope      engine.Scope  `json:"scope"`
	Subject    string        `json:"subject"`
	Roster     engine.Roster `json:"roster"`
	Skipped    int           `json:"skipped"`
	Overlaps   int           `json:"overlaps"`
	CreatedAt  int64         `json:"createdAt"`
}

func rosterKey(id uuid.UUID) string {
	return fmt.Sprintf("roster:%s", id)
}

func (s *Server) storeRoster(ctx context.Context, record rosterRecord) error {
	if s.redis == nil {
		return errors.New("redis_not_configured")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, rosterKey(record.ID), data, s.rosterTTL).Err()
}

func (s *Server) loadRoster(ctx context.Context, id uuid.UUID) (rosterRecord, bool, error) {
	if s.redis == nil {
		return rosterRecord{}, false, errors.New("redis_not_configured")
	}
	value, err := s.redis.Get(ctx, rosterKey(id)).Result()
	if err == redis.Nil {
		return rosterRecord{}, false, nil
	}
	if err != nil {
		return rosterRecord{}, false, err
	}
	var record rosterRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return rosterRecord{}, false, err
	}
	return record, true, nil
}

// requireRoster resolves the snapshot addressed by the route or writes the
// appropriate error itself.
func (s *Server) requireRoster(w http.ResponseWriter, r *http.Request) (rosterRecord, bool) {
	rosterID := chi.URLParam(r, "rosterId")
	id, err := uuid.Parse(rosterID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_roster_id")
		return rosterRecord{}, false
	}
	record, ok, err := s.loadRoster(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return rosterRecord{}, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "roster_not_found")
		return rosterRecord{}, false
	}
	return record, true
}

// mutateRoster applies one engine operation to the snapshot and persists the
// resulting roster under the same key. The returned view reflects the new
// snapshot.
func (s *Server) mutateRoster(w http.ResponseWriter, r *http.Request, record rosterRecord, fn func(engine.Roster) (engine.Roster, error)) {
	roster, err := fn(record.Roster)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	record.Roster = roster
	if err := s.storeRoster(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, s.rosterView(record))
}

func participantIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "participantId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_participant_id")
		return uuid.UUID{}, false
	}
	return id, true
}

// Views

func (s *Server) rosterView(record rosterRecord) rosterView {
	hours, estimated := engine.DeriveHours(record.Roster, record.Scope, s.rules)
	if estimated {
		log.Printf("roster %s: no hour had enough overlap, using fallback schedule", record.ID)
	}
	view := rosterView{
		ID:                record.ID.String(),
		LessonDate:        record.LessonDate,
		Scope:             record.Scope,
		Subject:           record.Subject,
		Schedule:          engine.ScheduleText(record.Roster, record.Scope, hours, s.rules),
		LessonHours:       hours,
		ScheduleEstimated: estimated,
		SkippedEvents:     record.Skipped,
		OverlapWarnings:   record.Overlaps,
		Stats:             record.Roster.Stats(),
	}
	view.Participants = make([]participantView, 0, len(record.Roster.Participants))
	for _, p := range record.Roster.Participants {
		view.Participants = append(view.Participants, s.participantView(p, hours))
	}
	if record.Roster.Organizer != nil {
		org := s.participantView(*record.Roster.Organizer, hours)
		view.Organizer = &org
	}
	return view
}

func (s *Server) participantView(p engine.Participant, hours []int) participantView {
	return participantView{
		ID:                p.ID.String(),
		Name:              p.Name,
		Email:             p.Email,
		Organizer:         p.Organizer,
		Morning:           p.Morning,
		Afternoon:         p.Afternoon,
		AbsenceMinutes:    p.AbsenceMinutes,
		Present:           p.Present,
		MarkedAbsent:      p.MarkedAbsent,
		Aliases:           p.Aliases,
		Hourly:            engine.HourlyGrid(p, hours, s.rules),
		AttendancePercent: engine.AttendancePercent(p, hours, s.rules),
	}
}

func (s *Server) reportView(record rosterRecord) reportResponse {
	return reportResponse{
		RosterID:   record.ID.String(),
		LessonDate: record.LessonDate,
		Scope:      record.Scope,
		Subject:    record.Subject,
		Report:     engine.BuildReport(record.Roster, record.Scope, s.rules),
	}
}

func toRawEvents(payloads []rawEventPayload) []engine.RawEvent {
	events := make([]engine.RawEvent, 0, len(payloads))
	for _, p := range payloads {
		events = append(events, engine.RawEvent{
			Name:          p.Name,
			Email:         p.Email,
			Join:          parseEventTime(p.Join),
			Leave:         parseEventTime(p.Leave),
			OrganizerHint: p.Organizer,
		})
	}
	return events
}

// parseEventTime maps unparseable timestamps to the zero time so the
// normalizer counts the record as skipped instead of failing the upload.
func parseEventTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Errors

func writeEngineError(w http.ResponseWriter, err error) {
	var mergeErr *engine.InvalidMergeError
	var emptyErr *engine.EmptyRosterError
	switch {
	case errors.Is(err, engine.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, "participant_not_found")
	case errors.Is(err, engine.ErrMissingName):
		writeError(w, http.StatusBadRequest, "missing_name")
	case errors.As(err, &mergeErr):
		writeError(w, http.StatusConflict, "invalid_merge")
	case errors.As(err, &emptyErr):
		writeError(w, http.StatusBadRequest, "empty_roster")
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// Utilities

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
