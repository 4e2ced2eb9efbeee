package listview

import (
	"context"
	"errors"
	"net/http"

	"tripdesk/activity"
	"tripdesk/apiclient"
	"tripdesk/resources"
	"tripdesk/session"
	"tripdesk/toast"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers serve one-shot list requests; live sessions keep their screens
// open instead.
type Handlers struct {
	Client     *apiclient.Client
	Recorder   activity.Recorder
	OnMutation func(ctx context.Context, resource string)
}

func (h *Handlers) open(r *http.Request, ps httprouter.Params, notes *toast.Recorder) (Screen, int, error) {
	name := ps.ByName("resource")
	res, ok := resources.Lookup(name)
	if !ok || res.List == "" {
		return nil, http.StatusNotFound, errors.New("unknown list")
	}
	qo := utils.ParseQueryOptions(r, res.Filters...)
	q := Query{Page: qo.Page, Limit: qo.Limit, Search: qo.Search, Filters: map[string]string{}}
	for k := range qo.Filters {
		q.Filters[k] = qo.Filters.Get(k)
	}
	client := h.Client.WithToken(session.Token(r.Context()))
	screen, err := Open(r.Context(), client, name, Options{
		Query:      q,
		Notifier:   notes,
		Recorder:   h.Recorder,
		OnMutation: h.OnMutation,
	})
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return screen, 0, nil
}

func respond(w http.ResponseWriter, status int, screen Screen, notes *toast.Recorder, err error) {
	body := utils.M{
		"success": err == nil,
		"data":    screen.Snapshot(),
		"toasts":  notes.Toasts(),
	}
	if err != nil {
		body["message"] = apiclient.Message(err, err.Error())
	}
	utils.RespondWithJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrNotSupported):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadGateway
	}
}

// List serves GET /api/lists/:resource?page&limit&search&<filters>.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	screen, status, err := h.open(r, ps, notes)
	if err != nil {
		utils.RespondWithError(w, status, err.Error())
		return
	}
	defer screen.Close()

	err = screen.Load(r.Context())
	respond(w, statusFor(err), screen, notes, err)
}

// Delete serves DELETE /api/lists/:resource/:id?confirm=true.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	screen, status, err := h.open(r, ps, notes)
	if err != nil {
		utils.RespondWithError(w, status, err.Error())
		return
	}
	defer screen.Close()

	confirmed := utils.ParseBool(r.URL.Query().Get("confirm"))
	err = screen.Delete(r.Context(), ps.ByName("id"), confirmed)
	respond(w, statusFor(err), screen, notes, err)
}

// Feature serves PATCH /api/lists/:resource/:id/feature?current=<bool>.
func (h *Handlers) Feature(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes := &toast.Recorder{}
	screen, status, err := h.open(r, ps, notes)
	if err != nil {
		utils.RespondWithError(w, status, err.Error())
		return
	}
	defer screen.Close()

	current := utils.ParseBool(r.URL.Query().Get("current"))
	err = screen.ToggleFeature(r.Context(), ps.ByName("id"), current)
	respond(w, statusFor(err), screen, notes, err)
}

// ListInfo describes one list screen for the dashboard navigation.
type ListInfo struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Filters    []string `json:"filters"`
	Featurable bool     `json:"featurable"`
	Deletable  bool     `json:"deletable"`
}

// Index serves GET /api/lists.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	out := []ListInfo{}
	for _, name := range resources.Listable() {
		res, _ := resources.Lookup(name)
		filters := append([]string{}, res.Filters...)
		out = append(out, ListInfo{
			Name:       name,
			Label:      res.Label,
			Filters:    filters,
			Featurable: res.Featurable(),
			Deletable:  res.Deletable(),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": out})
}
