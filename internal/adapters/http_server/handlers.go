// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gangwongo/internal/app"
	"gangwongo/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Agg   *app.Aggregator
	Prefs *app.PreferenceService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type membership struct {
	ContentID string `json:"contentId"`
	Member    bool   `json:"member"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/areas/{sigungu}/tours", h.areaTours)

		r.Get("/tours/season", h.seasonTours)
		r.Get("/tours/nature", h.natureTours)
		r.Get("/tours/culture", h.cultureTours)
		r.Get("/tours/{contentId}", h.tourDetail)
		r.Get("/tours/{contentId}/images", h.tourImages)

		r.Get("/festivals", h.festivals)
		r.Get("/festivals/{contentId}", h.festivalDetail)
		r.Get("/events", h.events)
		r.Get("/events/{contentId}", h.eventDetail)

		r.Get("/restaurants", h.restaurants)
		r.Get("/restaurants/{contentId}", h.restaurantDetail)

		r.Get("/leisure", h.leisure)
		r.Get("/leisure/season", h.seasonLeisure)
		r.Get("/leisure/{contentId}", h.leisureDetail)

		r.Get("/lodging", h.lodging)
		r.Get("/lodging/{contentId}", h.lodgingDetail)

		r.Get("/users/{userId}/{kind}", h.listPrefs)
		r.Get("/users/{userId}/{kind}/{contentId}", h.hasPref)
		r.Put("/users/{userId}/{kind}/{contentId}", h.addPref)
		r.Delete("/users/{userId}/{kind}/{contentId}", h.removePref)
		r.Post("/users/{userId}/{kind}/{contentId}/toggle", h.togglePref)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "content not found")
	case errors.Is(err, domain.ErrInvalidPreference):
		writeProblem(w, http.StatusBadRequest, "Invalid Preference", err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream quota exceeded")
		w.Header().Set("Retry-After", "3600")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "tour service quota exceeded")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("upstream request failed")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "tour service unavailable")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with a weak ETag, or 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "encoding failed")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", "ko")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// intQuery reads a positive integer query param, def when absent.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def, max int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > max {
		writeProblem(w, http.StatusBadRequest, "Invalid "+name, name+" must be an integer between 1 and "+strconv.Itoa(max))
		return 0, false
	}
	return n, true
}

func listPage(items []domain.ListItem) domain.ListPage {
	return domain.ListPage{TotalCount: len(items), Items: items}
}

func eventQuery(r *http.Request, page int) domain.EventQuery {
	q := r.URL.Query()
	return domain.EventQuery{StartDate: q.Get("start"), EndDate: q.Get("end"), Sigungu: q.Get("sigungu"), Page: page}
}

/********** lists **********/

func (h *Handlers) areaTours(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, listPage(h.Agg.AreaList(r.Context(), chi.URLParam(r, "sigungu"))))
}

func (h *Handlers) seasonTours(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	writeJSON(w, r, listPage(h.Agg.SeasonTourList(r.Context(), r.URL.Query().Get("season"), page)))
}

func (h *Handlers) natureTours(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	writeJSON(w, r, listPage(h.Agg.NatureTourList(r.Context(), r.URL.Query().Get("category"), page)))
}

func (h *Handlers) cultureTours(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	writeJSON(w, r, listPage(h.Agg.CultureTourList(r.Context(), r.URL.Query().Get("category"), page)))
}

func (h *Handlers) seasonLeisure(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	writeJSON(w, r, listPage(h.Agg.SeasonLeisureList(r.Context(), r.URL.Query().Get("season"), page)))
}

func (h *Handlers) festivals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Agg.FestivalList(r.Context(), eventQuery(r, 1)))
}

func (h *Handlers) events(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	items, err := h.Agg.PerformanceEventList(r.Context(), eventQuery(r, page))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, listPage(items))
}

func (h *Handlers) restaurants(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	rows, ok := intQuery(w, r, "rows", 0, 1000)
	if !ok {
		return
	}
	out, err := h.Agg.RestaurantList(r.Context(), page, rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) leisure(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	out, err := h.Agg.LeisureList(r.Context(), r.URL.Query().Get("sigungu"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) lodging(w http.ResponseWriter, r *http.Request) {
	page, ok := intQuery(w, r, "page", 1, 10000)
	if !ok {
		return
	}
	rows, ok := intQuery(w, r, "rows", 0, 1000)
	if !ok {
		return
	}
	writeJSON(w, r, listPage(h.Agg.LodgingList(r.Context(), page, rows)))
}

/********** details **********/

func (h *Handlers) tourDetail(w http.ResponseWriter, r *http.Request) {
	typeID, ok := intQuery(w, r, "type", 0, 99)
	if !ok {
		return
	}
	out, err := h.Agg.Detail(r.Context(), chi.URLParam(r, "contentId"), typeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) tourImages(w http.ResponseWriter, r *http.Request) {
	out, err := h.Agg.TourImages(r.Context(), chi.URLParam(r, "contentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) detail(w http.ResponseWriter, r *http.Request, fetch func(*http.Request, string) (domain.DetailInfo, error)) {
	out, err := fetch(r, chi.URLParam(r, "contentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) festivalDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, func(r *http.Request, id string) (domain.DetailInfo, error) { return h.Agg.FestivalDetail(r.Context(), id) })
}

func (h *Handlers) eventDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, func(r *http.Request, id string) (domain.DetailInfo, error) {
		return h.Agg.PerformanceEventDetail(r.Context(), id)
	})
}

func (h *Handlers) restaurantDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, func(r *http.Request, id string) (domain.DetailInfo, error) { return h.Agg.RestaurantDetail(r.Context(), id) })
}

func (h *Handlers) leisureDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, func(r *http.Request, id string) (domain.DetailInfo, error) { return h.Agg.LeisureDetail(r.Context(), id) })
}

func (h *Handlers) lodgingDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, func(r *http.Request, id string) (domain.DetailInfo, error) { return h.Agg.LodgingDetail(r.Context(), id) })
}

/********** preferences **********/

func prefKind(r *http.Request) domain.PreferenceKind {
	return domain.PreferenceKind(chi.URLParam(r, "kind"))
}

func (h *Handlers) listPrefs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Prefs.List(r.Context(), chi.URLParam(r, "userId"), prefKind(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, ids)
}

func (h *Handlers) hasPref(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contentId")
	in, err := h.Prefs.Contains(r.Context(), chi.URLParam(r, "userId"), prefKind(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, membership{ContentID: id, Member: in})
}

func (h *Handlers) addPref(w http.ResponseWriter, r *http.Request) {
	if err := h.Prefs.Add(r.Context(), chi.URLParam(r, "userId"), prefKind(r), chi.URLParam(r, "contentId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removePref(w http.ResponseWriter, r *http.Request) {
	if err := h.Prefs.Remove(r.Context(), chi.URLParam(r, "userId"), prefKind(r), chi.URLParam(r, "contentId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) togglePref(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contentId")
	in, err := h.Prefs.Toggle(r.Context(), chi.URLParam(r, "userId"), prefKind(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, membership{ContentID: id, Member: in})
}
