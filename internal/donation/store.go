package donation

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

// Backend is the slice of the request gateway the store uses.
type Backend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, payload any, out any) error
}

// Store is the canonical in-memory cache of donation records. A fresh list
// always replaces the cached set wholesale; lists are bounded and re-fetched
// on every filter change, so merging partial pages buys nothing.
type Store struct {
	backend Backend

	mu     sync.Mutex
	cached []Donation
	gen    uint64 // request generation: last issued filter wins
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// List fetches donations matching the status filter (StatusAll for no
// filter) and replaces the cache. Each call bumps the request generation; a
// response that arrives after a newer filter was issued is handed to its
// caller but never written to the cache, so overlapping filter changes
// cannot leave stale data on screen.
func (s *Store) List(ctx context.Context, status PaymentStatus, method PaymentMethod) ([]Donation, error) {
	s.mu.Lock()
	s.gen++
	myGen := s.gen
	s.mu.Unlock()

	// Only the explicit wildcards are omitted; OTHER is a real bucket and
	// filters like any other method.
	query := url.Values{}
	if status != "" && status != StatusAll {
		query.Set("paymentStatus", string(status))
	}
	if method != "" {
		query.Set("paymentMethod", string(method))
	}

	var fetched []Donation
	err := s.backend.GetJSON(ctx, "/donations/view-all", query, &fetched)
	if err != nil {
		return nil, common.AttachRetry(err, func(rctx context.Context) error {
			_, rerr := s.List(rctx, status, method)
			return rerr
		})
	}

	s.mu.Lock()
	if s.gen == myGen {
		s.cached = fetched
	}
	s.mu.Unlock()

	return fetched, nil
}

// ListOwn returns the authenticated donor's history. Scoping is enforced
// server-side; the client never asks for another donor's id. Own records are
// not written to the shared cache.
func (s *Store) ListOwn(ctx context.Context) ([]Donation, error) {
	var fetched []Donation
	err := s.backend.GetJSON(ctx, "/donations/donor-donation-history", nil, &fetched)
	if err != nil {
		return nil, common.AttachRetry(err, func(rctx context.Context) error {
			_, rerr := s.ListOwn(rctx)
			return rerr
		})
	}
	return fetched, nil
}

// Cached returns a copy of the last committed list.
func (s *Store) Cached() []Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Donation, len(s.cached))
	copy(out, s.cached)
	return out
}

// Verify asks the backend to move a donation to newStatus. Role enforcement
// happens at the screen boundary; this component trusts its caller. The only
// local pre-validation is the forward-only rule; the authoritative state
// machine lives server-side, so anything else is the backend's call. The
// cache is updated with the record the backend returns, never with a
// locally-guessed status. Safe to retry with the same target status.
func (s *Store) Verify(ctx context.Context, donationID string, amount float64, newStatus PaymentStatus) (*Donation, error) {
	if donationID == "" {
		return nil, &common.ValidationError{Field: "donationId", Message: "must not be empty"}
	}
	if amount <= 0 {
		return nil, &common.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}

	if current, ok := s.lookup(donationID); ok && !CanTransition(current.PaymentStatus, newStatus) {
		return nil, &common.ValidationError{
			Field:   "paymentStatus",
			Message: fmt.Sprintf("invalid transition %s -> %s", current.PaymentStatus, newStatus),
		}
	}

	var updated Donation
	path := fmt.Sprintf("/donations/%s/%s/verify", url.PathEscape(donationID), strconv.FormatFloat(amount, 'f', -1, 64))
	payload := map[string]string{"paymentStatus": string(newStatus)}
	if err := s.backend.PostJSON(ctx, path, payload, &updated); err != nil {
		return nil, common.AttachRetry(err, func(rctx context.Context) error {
			_, rerr := s.Verify(rctx, donationID, amount, newStatus)
			return rerr
		})
	}

	s.mu.Lock()
	for i := range s.cached {
		if s.cached[i].DonationID == updated.DonationID {
			s.cached[i] = updated
			break
		}
	}
	s.mu.Unlock()

	return &updated, nil
}

func (s *Store) lookup(donationID string) (Donation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.cached {
		if d.DonationID == donationID {
			return d, true
		}
	}
	return Donation{}, false
}
