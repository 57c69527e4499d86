package reports

import (
	"context"
	"net/url"
	"time"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
	"github.com/DipuTony/trulyhelp-portal/internal/donation"
)

// Backend is the slice of the request gateway the report service uses.
type Backend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	GetRaw(ctx context.Context, path string, query url.Values) ([]byte, string, error)
}

// Service produces reports. Every Generate call fetches fresh data and
// recomputes the aggregates; reports are never served from a cache.
type Service struct {
	backend Backend
	clock   func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend, clock: time.Now}
}

// Generate resolves the filter against the current clock, fetches the
// matching donations and aggregates them in one pass. Auto buckets are
// recomputed here on each evaluation.
func (s *Service) Generate(ctx context.Context, filter FilterSpec) (*Report, error) {
	query, err := Build(filter, s.clock())
	if err != nil {
		return nil, err
	}

	var donations []donation.Donation
	if err := s.backend.GetJSON(ctx, "/report/generate", query, &donations); err != nil {
		return nil, common.AttachRetry(err, func(rctx context.Context) error {
			_, rerr := s.Generate(rctx, filter)
			return rerr
		})
	}

	rep := Aggregate(donations)
	rep.Filter = filter
	return &rep, nil
}

// Raw10BD returns the regulatory 10BD file verbatim from the backend. The
// format is fixed by the filing requirement, so the bytes pass through
// untouched.
func (s *Service) Raw10BD(ctx context.Context) ([]byte, string, error) {
	body, contentType, err := s.backend.GetRaw(ctx, "/report/from10DB", nil)
	if err != nil {
		return nil, "", common.AttachRetry(err, func(rctx context.Context) error {
			_, _, rerr := s.Raw10BD(rctx)
			return rerr
		})
	}
	if contentType == "" {
		contentType = "text/csv"
	}
	return body, contentType, nil
}
