package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	playersvc "github.com/woominecraft/wmcbridge/internal/player"
	"github.com/woominecraft/wmcbridge/internal/types/order"
	"github.com/woominecraft/wmcbridge/internal/types/player"
)

type mockTemplates struct {
	templates map[int64][]string
}

func (m *mockTemplates) GetCommandTemplate(ctx context.Context, productID int64) ([]string, error) {
	return m.templates[productID], nil
}

type mockValidator struct {
	calls      int
	validateFn func(ctx context.Context, playerID string) (*player.Profile, error)
}

func (m *mockValidator) Validate(ctx context.Context, playerID string) (*player.Profile, error) {
	m.calls++
	return m.validateFn(ctx, playerID)
}

func TestCartWithoutTemplatesRequiresNothing(t *testing.T) {
	svc := NewService(&mockTemplates{templates: map[int64][]string{}})
	required, err := svc.CartRequiresPlayerID(context.Background(), []order.Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	assert.NoError(t, err)
	assert.False(t, required)
}

func TestCartRequiresPlayerIDViaVariation(t *testing.T) {
	svc := NewService(&mockTemplates{templates: map[int64][]string{
		42: {"give %s kit"},
	}})
	required, err := svc.CartRequiresPlayerID(context.Background(), []order.Item{
		{ProductID: 1, VariationID: 42, Quantity: 1},
	})
	assert.NoError(t, err)
	assert.True(t, required)
}

func TestCartIgnoresBaseTemplateWhenVariationSet(t *testing.T) {
	// the variation is the effective product; its empty template wins
	svc := NewService(&mockTemplates{templates: map[int64][]string{
		1: {"give %s kit"},
	}})
	required, err := svc.CartRequiresPlayerID(context.Background(), []order.Item{
		{ProductID: 1, VariationID: 42, Quantity: 1},
	})
	assert.NoError(t, err)
	assert.False(t, required)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestValidateSkipsValidatorForPlainCart(t *testing.T) {
	validator := &mockValidator{}
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{}}), validator)

	rec := postJSON(t, h.Validate, `{"player_id":"","items":[{"product_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, validator.calls)
}

func TestValidateMissingPlayerNotice(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, playerID string) (*player.Profile, error) {
			return nil, playersvc.ErrMissingPlayerID
		},
	}
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{1: {"op %s"}}}), validator)

	rec := postJSON(t, h.Validate, `{"player_id":"","items":[{"product_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You MUST provide a Minecraft username.")
}

func TestValidateMojangFailureNotice(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, playerID string) (*player.Profile, error) {
			return nil, playersvc.ErrLookupFailed
		},
	}
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{1: {"op %s"}}}), validator)

	rec := postJSON(t, h.Validate, `{"player_id":"Notch","items":[{"product_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "There was an error with the Mojang API")
}

func TestValidateDemoAccountNotice(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, playerID string) (*player.Profile, error) {
			return &player.Profile{UUID: "abc", Name: playerID, Demo: true}, nil
		},
	}
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{1: {"op %s"}}}), validator)

	rec := postJSON(t, h.Validate, `{"player_id":"TrialGuy","items":[{"product_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unpaid-accounts")
}

func TestValidateHappyPathReturnsProfile(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, playerID string) (*player.Profile, error) {
			return &player.Profile{UUID: "0d252b72", Name: playerID}, nil
		},
	}
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{1: {"op %s"}}}), validator)

	rec := postJSON(t, h.Validate, `{"player_id":"Notch","items":[{"product_id":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Notch"`)
}

func TestRequirementsEndpoint(t *testing.T) {
	h := NewHandler(NewService(&mockTemplates{templates: map[int64][]string{5: {"kit %s"}}}), &mockValidator{})

	rec := postJSON(t, h.Requirements, `{"items":[{"product_id":5,"quantity":1}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"player_id_required":true}`, rec.Body.String())

	rec = postJSON(t, h.Requirements, `{"items":[{"product_id":6,"quantity":1}]}`)
	assert.JSONEq(t, `{"player_id_required":false}`, rec.Body.String())
}
