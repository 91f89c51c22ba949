package feed

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type Handler struct {
	svc *Service
	key string
}

func NewHandler(svc *Service, key string) *Handler {
	return &Handler{svc: svc, key: key}
}

// Serve is the /wmc endpoint the game server polls. A wrong or missing
// key returns silently with no body; the caller cannot tell it apart
// from no response at all, which is the contract the polling client was
// built against.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		return
	}
	if h.key == "" || r.Form.Get("key") != h.key {
		return
	}

	// Acknowledgement runs before the cache is consulted, and busts it,
	// so the document served below already excludes the acked orders.
	if r.Form.Has("processedOrders") {
		ids := ParseProcessedOrders(r.Form.Get("processedOrders"))
		if len(ids) == 0 {
			writeJSON(w, envelope{Success: false, Data: map[string]string{"msg": "Commands was empty"}})
			return
		}
		h.svc.Acknowledge(r.Context(), ids)
	}

	doc, err := h.svc.Document(r.Context())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, envelope{Success: true, Data: doc})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
