package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/talabarteria/rodriguez-backend/pkg/redis"
)

// Line is one product entry inside the stored cart blob.
type Line struct {
	ProductID int64 `json:"producto_id"`
	Quantity  int   `json:"cantidad"`
}

// State is the raw cart blob persisted in Redis under tr:cart:<token>.
type State struct {
	Lines      []Line  `json:"items"`
	CouponCode *string `json:"cupon"`
}

// Quantity returns the stored quantity for a product, zero when absent.
func (s *State) Quantity(productID int64) int {
	for _, line := range s.Lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// SetQuantity sets an absolute quantity; zero removes the line.
func (s *State) SetQuantity(productID int64, quantity int) {
	for i, line := range s.Lines {
		if line.ProductID == productID {
			if quantity <= 0 {
				s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			} else {
				s.Lines[i].Quantity = quantity
			}
			return
		}
	}
	if quantity > 0 {
		s.Lines = append(s.Lines, Line{ProductID: productID, Quantity: quantity})
	}
}

// IsEmpty reports whether the cart holds no lines.
func (s *State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Store reads and writes cart blobs in Redis. Every write refreshes the TTL
// so an active cart never expires under the shopper.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a cart store with the provided Redis client and TTL.
func NewStore(client *redis.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Load returns the cart for a token, or an empty cart when none is stored.
func (s *Store) Load(ctx context.Context, token string) (*State, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(token))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// A corrupt blob is unrecoverable; start the shopper fresh.
		return &State{}, nil
	}
	return &state, nil
}

// Save persists the cart and refreshes its TTL. An empty cart with no coupon
// is deleted instead.
func (s *Store) Save(ctx context.Context, token string, state *State) error {
	if state.IsEmpty() && state.CouponCode == nil {
		return s.Clear(ctx, token)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(token), payload, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear removes the cart blob entirely.
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.client.CartKey(token)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
