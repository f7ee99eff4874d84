package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/stats"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
	"github.com/eliasosarumwense/Habital-sub003/internal/utils"
)

// maxImportBytes caps the size of an uploaded CSV file.
const maxImportBytes = 32 << 20

// defaultRangeDays is the length of calendar and stats ranges when the
// request names no start date.
const defaultRangeDays = 30

// Handler holds the dependencies of every route.
type Handler struct {
	Habits *habits.Service
	Codec  *interchange.Codec

	now func() time.Time
}

func NewHandler(svc *habits.Service, codec *interchange.Codec) *Handler {
	return &Handler{Habits: svc, Codec: codec, now: time.Now}
}

// ImportResponse is returned by POST /api/import.
type ImportResponse struct {
	Summary string              `json:"summary"`
	Report  *interchange.Report `json:"report,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (h *Handler) loc() *time.Location {
	return h.Habits.Evaluator().Calendar().Location
}

func (h *Handler) today() time.Time {
	return h.Habits.Evaluator().Calendar().Normalize(h.now())
}

// dateParam reads a YYYY-MM-DD query parameter, returning def when absent.
func (h *Handler) dateParam(r *http.Request, key string, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	t, err := utils.ParseDateInLocation(s, h.loc())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (expected YYYY-MM-DD)", key, s)
	}
	return t, nil
}

// rangeParams reads from/to, defaulting to the last 30 days through today.
func (h *Handler) rangeParams(r *http.Request) (time.Time, time.Time, error) {
	to, err := h.dateParam(r, "to", h.today())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := h.dateParam(r, "from", to.AddDate(0, 0, -(defaultRangeDays-1)))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range ends before it starts")
	}
	return from, to, nil
}

func (h *Handler) habitFromPath(w http.ResponseWriter, r *http.Request) (models.Habit, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid habit ID", err)
		return models.Habit{}, false
	}
	habit, err := h.Habits.GetHabit(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "habit not found", nil)
		return models.Habit{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load habit", err)
		return models.Habit{}, false
	}
	return habit, true
}

// ListHabits handles GET /api/habits.
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date", h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter := storage.HabitFilter{}
	filter.IncludeArchived, _ = strconv.ParseBool(r.URL.Query().Get("archived"))
	if s := r.URL.Query().Get("list"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid list ID", err)
			return
		}
		filter.ListID = uuid.NullUUID{UUID: id, Valid: true}
	}

	list, err := h.Habits.Habits(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list habits", err)
		return
	}
	cal := h.Habits.Evaluator().Calendar()
	dtos := make([]HabitDTO, 0, len(list))
	for _, habit := range list {
		dtos = append(dtos, toHabitDTO(cal, h.Habits.Item(habit, date), false))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHabit handles GET /api/habits/{id}.
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.habitFromPath(w, r)
	if !ok {
		return
	}
	date, err := h.dateParam(r, "date", h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	cal := h.Habits.Evaluator().Calendar()
	writeJSON(w, http.StatusOK, toHabitDTO(cal, h.Habits.Item(habit, date), true))
}

// GetCalendar handles GET /api/habits/{id}/calendar?from=&to=.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.habitFromPath(w, r)
	if !ok {
		return
	}
	from, to, err := h.rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	days, err := h.Habits.Calendar(r.Context(), habit, from, to)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to build calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// ToggleCompletion handles POST /api/habits/{id}/toggle?date=.
func (h *Handler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	habit, ok := h.habitFromPath(w, r)
	if !ok {
		return
	}
	date, err := h.dateParam(r, "date", h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	done, err := h.Habits.Toggle(r.Context(), habit.ID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to toggle completion", err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Date: date.Format(constants.DateFormat), Completed: done})
}

// GetToday handles GET /api/today?date=.
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date", h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	items, err := h.Habits.Day(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load day", err)
		return
	}
	cal := h.Habits.Evaluator().Calendar()
	dtos := make([]HabitDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toHabitDTO(cal, item, false))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStats handles GET /api/stats?from=&to=.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	list, err := h.Habits.Habits(r.Context(), storage.HabitFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list habits", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(h.Habits.Evaluator(), list, from, to))
}

// Export handles GET /api/export. The file is built in memory so a failure
// can still be reported with a proper status.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.Codec.Export(r.Context(), &buf); err != nil {
		if errors.Is(err, interchange.ErrBusy) {
			writeError(w, http.StatusConflict, "an import or export is already running", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "export failed", err)
		return
	}

	w.Header().Set("Content-Type", constants.ExportMIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", interchange.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("Failed to write export response", "error", err)
	}
}

// Import handles POST /api/import?atomic=. The body is the CSV file.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	atomic, _ := strconv.ParseBool(r.URL.Query().Get("atomic"))
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	report, err := h.Codec.Import(r.Context(), body, interchange.ImportOptions{Atomic: atomic})
	switch {
	case errors.Is(err, interchange.ErrBusy):
		writeError(w, http.StatusConflict, "an import or export is already running", nil)
	case err != nil:
		status := http.StatusInternalServerError
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		resp := ImportResponse{Report: report, Error: err.Error()}
		if report != nil {
			resp.Summary = report.Summary()
		}
		writeJSON(w, status, resp)
	default:
		writeJSON(w, http.StatusOK, ImportResponse{Summary: report.Summary(), Report: report})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
