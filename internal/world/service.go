// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// Actor is the authenticated caller of a Service operation, with the
// campaign/character context the request supplied.
type Actor struct {
	UserID  ulid.ULID
	Admin   bool
	Context access.Context
}

// Reader projects the actor into the access engine's reader identity.
func (a Actor) Reader() access.Reader {
	return access.Reader{UserID: a.UserID, Admin: a.Admin}
}

// DefaultGrants holds the grant templates stamped onto freshly created
// resources. Constructed once at startup (typically from seed profiles)
// and passed in; the Service never reaches into ambient state.
type DefaultGrants struct {
	Entity   []access.GrantTemplate
	Location []access.GrantTemplate
}

// ServiceConfig holds the dependencies of a Service.
type ServiceConfig struct {
	Entities   EntityRepository
	Locations  LocationRepository
	Notes      NoteRepository
	Access     access.Repository
	Transactor Transactor
	Defaults   DefaultGrants
	Logger     *slog.Logger
}

// Service orchestrates authorized, audited mutations of the domain.
// Every multi-step operation runs inside one transaction: it commits
// fully or rolls back fully.
type Service struct {
	entities   EntityRepository
	locations  LocationRepository
	notes      NoteRepository
	accessRepo access.Repository
	tx         Transactor
	defaults   DefaultGrants
	logger     *slog.Logger
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entities:   cfg.Entities,
		locations:  cfg.Locations,
		notes:      cfg.Notes,
		accessRepo: cfg.Access,
		tx:         cfg.Transactor,
		defaults:   cfg.Defaults,
		logger:     logger,
	}
}

// engine builds a fresh request-scoped access engine. Callers keep one
// engine per operation so role memoization spans the operation and no
// further.
func (s *Service) engine() *access.Engine {
	return access.NewEngine(s.accessRepo)
}

// errHidden is the uniform answer for resources the caller may not see:
// never reveal whether the resource exists.
func errHidden(res access.Resource) error {
	return oops.Code(access.CodeNotFound).
		With("resource_id", res.ID.String()).
		Wrap(ErrNotFound)
}

// canMutate answers a write check without leaking existence: callers who
// cannot even read the resource get NOT_FOUND, readers without write
// authority get FORBIDDEN.
func (s *Service) canMutate(ctx context.Context, eng *access.Engine, actor Actor, res access.Resource) error {
	if actor.Admin {
		return nil
	}
	ok, err := eng.CanWrite(ctx, actor.UserID, res, actor.Context)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	readable, err := eng.CanRead(ctx, actor.UserID, res, actor.Context)
	if err != nil {
		return err
	}
	if !readable {
		return errHidden(res)
	}
	return oops.Code(access.CodeForbidden).
		With("resource_id", res.ID.String()).
		Wrap(ErrForbidden)
}

// canCreate gates resource creation, which has no grants to consult yet:
// admins, architects, and world-level GMs may create.
func (s *Service) canCreate(ctx context.Context, eng *access.Engine, actor Actor, worldID ulid.ULID) error {
	if actor.Admin {
		return nil
	}
	architect, err := eng.Resolver().IsArchitect(ctx, actor.UserID, worldID)
	if err != nil {
		return err
	}
	if architect {
		return nil
	}
	gm, err := eng.Resolver().IsGameMaster(ctx, actor.UserID, worldID)
	if err != nil {
		return err
	}
	if gm {
		return nil
	}
	return oops.Code(access.CodeForbidden).
		With("world_id", worldID.String()).
		Wrap(ErrForbidden)
}

// appendAudit records one audit entry and bumps the audit metric.
func (s *Service) appendAudit(ctx context.Context, resourceID ulid.ULID, action access.AuditAction, actorID ulid.ULID, details access.AuditDetails) error {
	entry, err := access.NewAuditEntry(resourceID, action, actorID, details)
	if err != nil {
		return err
	}
	if err := s.accessRepo.AppendAuditEntry(ctx, entry); err != nil {
		return err
	}
	access.RecordAuditEntry(action)
	return nil
}

// GetEntity retrieves one entity the actor may read.
func (s *Service) GetEntity(ctx context.Context, actor Actor, id ulid.ULID) (*Entity, error) {
	e, err := s.entities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Admin {
		return e, nil
	}
	ok, err := s.engine().CanRead(ctx, actor.UserID, e.Resource(), actor.Context)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errHidden(e.Resource())
	}
	return e, nil
}

// ListEntities returns the entities of a world visible to the actor.
func (s *Service) ListEntities(ctx context.Context, actor Actor, worldID ulid.ULID) ([]*Entity, error) {
	pred, err := s.engine().BuildReadFilter(ctx, actor.UserID, worldID, actor.Context)
	if err != nil {
		return nil, err
	}
	return s.entities.ListWhere(ctx, pred)
}

// CreateEntity validates, persists, stamps the default grant set, and
// records the create audit entry, all in one transaction.
func (s *Service) CreateEntity(ctx context.Context, actor Actor, e *Entity) error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if err := ValidateFields(e.Fields); err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canCreate(ctx, eng, actor, e.WorldID); err != nil {
		return err
	}
	if e.ID.IsZero() {
		e.ID = ulid.Make()
	}

	grants := access.BindTemplates(s.defaults.Entity, e.ID, actor.Context)
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.entities.Create(ctx, e); err != nil {
			return err
		}
		if len(grants) > 0 {
			if err := s.accessRepo.ReplaceGrants(ctx, e.ID, grants); err != nil {
				return err
			}
		}
		return s.appendAudit(ctx, e.ID, access.AuditCreate, actor.UserID, access.AuditDetails{})
	})
	if err != nil {
		return oops.With("entity_id", e.ID.String()).Wrap(err)
	}
	s.logger.InfoContext(ctx, "entity created",
		slog.String("entity_id", e.ID.String()),
		slog.String("world_id", e.WorldID.String()))
	return nil
}

// UpdateEntity persists an entity edit and records the field-level diff
// in one audit entry. An edit that changes nothing writes nothing.
func (s *Service) UpdateEntity(ctx context.Context, actor Actor, e *Entity) error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if err := ValidateFields(e.Fields); err != nil {
		return err
	}

	current, err := s.entities.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, current.Resource()); err != nil {
		return err
	}

	changes := EntityChanges(current, e)
	if len(changes) == 0 {
		return nil
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.entities.Update(ctx, e); err != nil {
			return err
		}
		return s.appendAudit(ctx, e.ID, access.AuditUpdate, actor.UserID, access.AuditDetails{Changes: changes})
	})
	if err != nil {
		return oops.With("entity_id", e.ID.String()).Wrap(err)
	}
	return nil
}

// DeleteEntity removes an entity and records the delete audit entry.
func (s *Service) DeleteEntity(ctx context.Context, actor Actor, id ulid.ULID) error {
	current, err := s.entities.Get(ctx, id)
	if err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, current.Resource()); err != nil {
		return err
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.entities.Delete(ctx, id); err != nil {
			return err
		}
		return s.appendAudit(ctx, id, access.AuditDelete, actor.UserID, access.AuditDetails{})
	})
	if err != nil {
		return oops.With("entity_id", id.String()).Wrap(err)
	}
	return nil
}

func ulidPtrEqual(a, b *ulid.ULID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ulidPtrString(id *ulid.ULID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
