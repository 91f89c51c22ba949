package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	playersvc "github.com/woominecraft/wmcbridge/internal/player"
	"github.com/woominecraft/wmcbridge/internal/types/order"
	"github.com/woominecraft/wmcbridge/internal/types/player"
)

// Checkout notices shown to the buyer, wording kept from the storefront.
const (
	noticeMissingPlayer = "You MUST provide a Minecraft username."
	noticeMojangError   = "There was an error with the Mojang API, please try again later."
	noticeDemoAccount   = "We do not allow unpaid-accounts to make donations, sorry!"
)

type PlayerValidator interface {
	Validate(ctx context.Context, playerID string) (*player.Profile, error)
}

type Handler struct {
	svc     *Service
	players PlayerValidator
}

func NewHandler(svc *Service, players PlayerValidator) *Handler {
	return &Handler{svc: svc, players: players}
}

type cartReq struct {
	PlayerID string       `json:"player_id"`
	Items    []order.Item `json:"items"`
}

// Requirements tells the storefront whether to render the player id field
// for this cart.
func (h *Handler) Requirements(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	required, err := h.svc.CartRequiresPlayerID(r.Context(), req.Items)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"player_id_required": required})
}

// Validate runs the checkout-submit check: carts with no commandable
// items pass through untouched, everything else must name a real,
// non-demo Mojang account.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	required, err := h.svc.CartRequiresPlayerID(r.Context(), req.Items)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !required {
		w.WriteHeader(http.StatusOK)
		return
	}

	profile, err := h.players.Validate(r.Context(), req.PlayerID)
	switch {
	case errors.Is(err, playersvc.ErrMissingPlayerID):
		http.Error(w, noticeMissingPlayer, http.StatusBadRequest)
		return
	case errors.Is(err, playersvc.ErrProfileNotFound), errors.Is(err, playersvc.ErrLookupFailed):
		http.Error(w, noticeMojangError, http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if profile.Demo {
		http.Error(w, noticeDemoAccount, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
