package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/footfall-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

type hoursResponse struct {
	RunID string              `json:"run_id"`
	Hours []domain.HourRecord `json:"hours"`
}

type daysResponse struct {
	RunID         string             `json:"run_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	WeatherMerged bool               `json:"weather_merged"`
	Days          []domain.DayRecord `json:"days"`
}

type summaryResponse struct {
	RunID string `json:"run_id"`
	domain.Summary
	SkippedRows   int            `json:"skipped_rows"`
	BusinessHours []weekdayHours `json:"business_hours"`
}

type weekdayHours struct {
	Weekday string `json:"weekday"`
	Open    int    `json:"open"`
	Close   int    `json:"close"`
}

// weekdayTable lists the windows Monday first, the order the dashboard shows.
func weekdayTable(bh domain.BusinessHours) []weekdayHours {
	out := make([]weekdayHours, 0, len(bh))
	for i := range len(bh) {
		wd := time.Weekday((i + 1) % 7)
		out = append(out, weekdayHours{Weekday: wd.String(), Open: bh[wd].Start, Close: bh[wd].End})
	}
	return out
}

type benchmarkResponse struct {
	Day       domain.DayRecord    `json:"day"`
	Gender    *domain.Gender      `json:"gender"`
	Hours     []domain.HourRecord `json:"hours"`
	Mode      string              `json:"mode"`
	Benchmark *domain.Benchmark   `json:"benchmark"`
}

// handleHours serves all hourly records, or those of ?date=.
func (s *Server) handleHours(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) {
	date, err := s.parseDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hours := snap.Hours
	if !date.IsZero() {
		hours = domain.HoursOn(snap.Hours, date)
	}
	writeJSON(w, http.StatusOK, hoursResponse{RunID: snap.RunID, Hours: hours})
}

// handleDays serves daily records within the optional ?from=&to= range.
func (s *Server) handleDays(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) {
	from, to, ok := s.parseRange(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, daysResponse{
		RunID:         snap.RunID,
		GeneratedAt:   snap.GeneratedAt,
		WeatherMerged: snap.WeatherMerged,
		Days:          domain.FilterRange(snap.Days, from, to),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) {
	from, to, ok := s.parseRange(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		RunID:         snap.RunID,
		Summary:       domain.Summarize(domain.FilterRange(snap.Days, from, to)),
		SkippedRows:   snap.SkippedRows,
		BusinessHours: weekdayTable(snap.BusinessHours),
	})
}

// handleBenchmark serves the selected day with its hourly series, gender split
// and the comparison record chosen by ?mode= and ?benchmark=.
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) {
	selected, err := s.parseDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if selected.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	mode, err := domain.ParseBenchmarkMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sel domain.BenchmarkSelection
	switch mode {
	case domain.BenchmarkExplicit:
		bdate, err := s.parseDate(r, "benchmark")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if bdate.IsZero() {
			writeError(w, http.StatusBadRequest, "benchmark is required when mode is explicit")
			return
		}
		sel = sel.WithExplicit(bdate)
	case domain.BenchmarkWeekdayAverage:
		sel = sel.WithWeekdayAverage()
	default:
		sel = sel.Cleared()
	}

	day, ok := domain.FindDay(snap.Days, selected)
	if !ok {
		writeError(w, http.StatusNotFound, "no data for "+domain.DateKey(selected))
		return
	}

	resp := benchmarkResponse{
		Day:   day,
		Hours: domain.HoursOn(snap.Hours, selected),
		Mode:  sel.Mode.String(),
	}
	if g, ok := domain.GenderSplit(day); ok {
		resp.Gender = &g
	}
	if bm, ok := domain.SelectBenchmark(snap.Days, selected, sel); ok {
		resp.Benchmark = &bm
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request, snap *pipeline.Snapshot) {
	var buf bytes.Buffer
	if err := xlsx.Export(&buf, *snap); err != nil {
		s.logger.Error("xlsx export failed", "run_id", snap.RunID, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := "footfall-" + snap.GeneratedAt.In(s.loc).Format("20060102-1504") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleRefresh runs the pipeline once and reports the new snapshot.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.pipeline.Run(r.Context())
	if err != nil {
		body := map[string]string{"error": err.Error()}
		if snap != nil {
			body["run_id"] = snap.RunID
		}
		writeJSON(w, http.StatusBadGateway, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":         snap.RunID,
		"generated_at":   snap.GeneratedAt,
		"days":           len(snap.Days),
		"weather_merged": snap.WeatherMerged,
	})
}

// parseDate reads a YYYY-MM-DD query parameter. An absent parameter yields
// the zero time.
func (s *Server) parseDate(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", key, raw)
	}
	return t, nil
}

func (s *Server) parseRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	from, err := s.parseDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	to, err = s.parseDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
