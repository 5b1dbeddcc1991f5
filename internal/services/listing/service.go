// Package listing provides the read-through directory listing service: it
// serves principal and group collections from the local cache while fresh,
// and on a miss fetches from the directory client, writes the result back,
// and returns it. Concurrent misses for the same collection are collapsed
// into a single upstream fetch.
package listing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"dsadmin/internal/auditlog"
	"dsadmin/internal/directory"
)

// Cache is the subset of the directory cache the service depends on.
type Cache interface {
	Principals() ([]directory.Principal, bool)
	Groups() ([]directory.Group, bool)
	SetPrincipals([]directory.Principal)
	SetGroups([]directory.Group)
	SetPrincipal(directory.Principal)
	Clear()
}

// Auditor records administrative actions. Implementations never propagate
// storage failures to the caller.
type Auditor interface {
	Log(ctx context.Context, entry auditlog.Entry)
}

// Service is the read-through facade over the directory client and cache.
type Service struct {
	client directory.Client
	cache  Cache
	audit  Auditor
	logger zerolog.Logger

	group singleflight.Group
}

// NewService creates a listing service. audit may be nil when the caller
// does not record actions.
func NewService(client directory.Client, cache Cache, audit Auditor, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		audit:  audit,
		logger: logger,
	}
}

// Principals returns the principal collection, from cache when fresh.
func (s *Service) Principals(ctx context.Context) ([]directory.Principal, error) {
	if principals, ok := s.cache.Principals(); ok {
		return principals, nil
	}

	v, err, _ := s.group.Do("principals", func() (any, error) {
		principals, err := s.client.ListPrincipals(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing: principal fetch failed: %w", err)
		}
		s.cache.SetPrincipals(principals)
		return principals, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]directory.Principal), nil
}

// Groups returns the group collection, from cache when fresh.
func (s *Service) Groups(ctx context.Context) ([]directory.Group, error) {
	if groups, ok := s.cache.Groups(); ok {
		return groups, nil
	}

	v, err, _ := s.group.Do("groups", func() (any, error) {
		groups, err := s.client.ListGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing: group fetch failed: %w", err)
		}
		s.cache.SetGroups(groups)
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]directory.Group), nil
}

// Refresh forces both collections to be refetched on the next read.
func (s *Service) Refresh() {
	s.cache.Clear()
}

// NoteChange records an administrative mutation: the cached snapshot is
// invalidated (any write makes it stale) and the action is audited
// fire-and-forget. The triggering business action has already completed by
// the time this is called; nothing here can fail it.
func (s *Service) NoteChange(ctx context.Context, entry auditlog.Entry) {
	s.cache.Clear()
	if s.audit != nil {
		s.audit.Log(ctx, entry)
	}
}

// NotePatch records a mutation that touched a single principal: the row is
// patched in place instead of invalidating the whole snapshot, and the
// action is audited fire-and-forget.
func (s *Service) NotePatch(ctx context.Context, p directory.Principal, entry auditlog.Entry) {
	s.cache.SetPrincipal(p)
	if s.audit != nil {
		s.audit.Log(ctx, entry)
	}
}
