package feed

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/woominecraft/wmcbridge/internal/logger"
	"github.com/woominecraft/wmcbridge/internal/types/order"
)

// transientKey is the single cache slot the feed document lives under.
const transientKey = "wmc-transient-command-feed"

// Document maps player id -> order id -> compiled commands.
type Document map[string]map[int64][]string

type OrderSource interface {
	ListUndelivered(ctx context.Context) ([]order.Order, error)
	MarkDelivered(ctx context.Context, orderIDs []int64) error
}

// Service builds and caches the command feed the game server polls.
type Service struct {
	orders OrderSource
	cache  *cache.Cache
}

func NewService(orders OrderSource, ttl time.Duration) *Service {
	return &Service{
		orders: orders,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Document returns the cached feed document, recomputing it from storage
// when the cache slot is empty or expired. Orders whose compiled command
// list is empty are scanned but contribute nothing.
func (s *Service) Document(ctx context.Context) (Document, error) {
	if v, ok := s.cache.Get(transientKey); ok {
		return v.(Document), nil
	}

	orders, err := s.orders.ListUndelivered(ctx)
	if err != nil {
		return nil, err
	}

	doc := Document{}
	for _, o := range orders {
		if len(o.Commands) == 0 {
			continue
		}
		byOrder, ok := doc[o.PlayerID]
		if !ok {
			byOrder = map[int64][]string{}
			doc[o.PlayerID] = byOrder
		}
		byOrder[o.ID] = o.Commands
	}

	s.cache.Set(transientKey, doc, cache.DefaultExpiration)
	return doc, nil
}

// Acknowledge marks the given orders delivered and busts the feed cache
// unconditionally. Marking is idempotent and unknown IDs are silent
// no-ops; a storage failure is logged, not surfaced, matching the
// fire-and-forget contract of the polling client.
func (s *Service) Acknowledge(ctx context.Context, orderIDs []int64) {
	if err := s.orders.MarkDelivered(ctx, orderIDs); err != nil {
		logger.Log.Error("mark delivered", zap.Int64s("orders", orderIDs), zap.Error(err))
	}
	s.InvalidateCache()
}

// InvalidateCache drops the cached feed document.
func (s *Service) InvalidateCache() {
	s.cache.Delete(transientKey)
}

// ParseProcessedOrders decodes the processedOrders parameter: the polling
// client sends a JSON array that is URL-encoded and slash-escaped on top
// of normal form encoding. Non-numeric entries coerce to 0, same as the
// integer cast they always got. A nil result means nothing usable came
// in.
func ParseProcessedOrders(raw string) []int64 {
	if unescaped, err := url.QueryUnescape(raw); err == nil {
		raw = unescaped
	}
	raw = stripSlashes(raw)

	var decoded []any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil
	}
	ids := make([]int64, 0, len(decoded))
	for _, v := range decoded {
		ids = append(ids, coerceInt(v))
	}
	return ids
}

// stripSlashes removes escaping backslashes, keeping the escaped
// character.
func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func coerceInt(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}
