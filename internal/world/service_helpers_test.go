// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world_test

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access/accesstest"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

func ulidPtr(id ulid.ULID) *ulid.ULID { return &id }

func notFound(id ulid.ULID) error {
	return oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
}

// fakeEntityRepo is a map-backed world.EntityRepository.
type fakeEntityRepo struct {
	entities map[ulid.ULID]*world.Entity
	grants   *accesstest.FakeRepository
}

func (r *fakeEntityRepo) Get(_ context.Context, id ulid.ULID) (*world.Entity, error) {
	e, ok := r.entities[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEntityRepo) Create(_ context.Context, e *world.Entity) error {
	cp := *e
	r.entities[e.ID] = &cp
	return nil
}

func (r *fakeEntityRepo) Update(_ context.Context, e *world.Entity) error {
	if _, ok := r.entities[e.ID]; !ok {
		return notFound(e.ID)
	}
	cp := *e
	r.entities[e.ID] = &cp
	return nil
}

func (r *fakeEntityRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.entities[id]; !ok {
		return notFound(id)
	}
	delete(r.entities, id)
	delete(r.grants.Grants, id)
	return nil
}

func (r *fakeEntityRepo) ListWhere(_ context.Context, pred access.Predicate) ([]*world.Entity, error) {
	var out []*world.Entity
	for _, e := range r.entities {
		if access.Eval(pred, e.Resource(), r.grants.Grants[e.ID]) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeLocationRepo is a map-backed world.LocationRepository.
type fakeLocationRepo struct {
	locations map[ulid.ULID]*world.Location
	grants    *accesstest.FakeRepository
}

func (r *fakeLocationRepo) Get(_ context.Context, id ulid.ULID) (*world.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLocationRepo) Create(_ context.Context, l *world.Location) error {
	cp := *l
	r.locations[l.ID] = &cp
	return nil
}

func (r *fakeLocationRepo) Update(_ context.Context, l *world.Location) error {
	if _, ok := r.locations[l.ID]; !ok {
		return notFound(l.ID)
	}
	cp := *l
	r.locations[l.ID] = &cp
	return nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.locations[id]; !ok {
		return notFound(id)
	}
	delete(r.locations, id)
	delete(r.grants.Grants, id)
	return nil
}

func (r *fakeLocationRepo) SetParent(_ context.Context, id ulid.ULID, parentID *ulid.ULID) error {
	l, ok := r.locations[id]
	if !ok {
		return notFound(id)
	}
	l.ParentID = parentID
	return nil
}

func (r *fakeLocationRepo) ParentOf(_ context.Context, id ulid.ULID) (*ulid.ULID, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, notFound(id)
	}
	return l.ParentID, nil
}

func (r *fakeLocationRepo) ListWhere(_ context.Context, pred access.Predicate) ([]*world.Location, error) {
	var out []*world.Location
	for _, l := range r.locations {
		if access.Eval(pred, l.Resource(), r.grants.Grants[l.ID]) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeNoteRepo is a map-backed world.NoteRepository.
type fakeNoteRepo struct {
	notes map[ulid.ULID]*world.Note
}

func (r *fakeNoteRepo) Get(_ context.Context, id ulid.ULID) (*world.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNoteRepo) Create(_ context.Context, n *world.Note) error {
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) Update(_ context.Context, n *world.Note) error {
	if _, ok := r.notes[n.ID]; !ok {
		return notFound(n.ID)
	}
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id ulid.ULID) error {
	if _, ok := r.notes[id]; !ok {
		return notFound(id)
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) ListByResource(_ context.Context, resourceID ulid.ULID) ([]*world.Note, error) {
	var out []*world.Note
	for _, n := range r.notes {
		if n.ResourceID == resourceID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// svcFixture wires a Service over in-memory repositories: one world
// with an architect, a world GM, a campaign (GM + one rostered
// character), and a plain player controlling that character.
type svcFixture struct {
	svc        *world.Service
	accessRepo *accesstest.FakeRepository
	entities   *fakeEntityRepo
	locations  *fakeLocationRepo
	notes      *fakeNoteRepo

	worldID     ulid.ULID
	campaignID  ulid.ULID
	characterID ulid.ULID
	architect   ulid.ULID
	worldGM     ulid.ULID
	campaignGM  ulid.ULID
	player      ulid.ULID
}

func newSvcFixture() *svcFixture {
	f := &svcFixture{
		accessRepo:  accesstest.NewFakeRepository(),
		worldID:     ulid.Make(),
		campaignID:  ulid.Make(),
		characterID: ulid.Make(),
		architect:   ulid.Make(),
		worldGM:     ulid.Make(),
		campaignGM:  ulid.Make(),
		player:      ulid.Make(),
	}
	f.entities = &fakeEntityRepo{entities: make(map[ulid.ULID]*world.Entity), grants: f.accessRepo}
	f.locations = &fakeLocationRepo{locations: make(map[ulid.ULID]*world.Location), grants: f.accessRepo}
	f.notes = &fakeNoteRepo{notes: make(map[ulid.ULID]*world.Note)}

	f.accessRepo.Roles[f.worldID] = access.WorldRoles{
		PrimaryArchitect: f.architect,
		GameMasters:      []ulid.ULID{f.worldGM},
	}
	f.accessRepo.Campaigns[f.campaignID] = access.CampaignInfo{
		WorldID:            f.worldID,
		Name:               "Ashfall",
		GMUserID:           f.campaignGM,
		RosterCharacterIDs: []ulid.ULID{f.characterID},
	}
	f.accessRepo.Characters[f.characterID] = access.CharacterInfo{
		WorldID:  f.worldID,
		Name:     "Isolde",
		PlayerID: f.player,
	}

	f.svc = world.NewService(world.ServiceConfig{
		Entities:   f.entities,
		Locations:  f.locations,
		Notes:      f.notes,
		Access:     f.accessRepo,
		Transactor: passthroughTx{},
		Defaults: world.DefaultGrants{
			Entity:   []access.GrantTemplate{{Access: access.AccessRead, Scope: access.ScopeGlobal}},
			Location: []access.GrantTemplate{{Access: access.AccessRead, Scope: access.ScopeGlobal}},
		},
	})
	return f
}

func (f *svcFixture) asArchitect() world.Actor { return world.Actor{UserID: f.architect} }
func (f *svcFixture) asPlayer() world.Actor    { return world.Actor{UserID: f.player} }

func (f *svcFixture) seedEntity(name string, grants ...access.Grant) *world.Entity {
	e := &world.Entity{ID: ulid.Make(), WorldID: f.worldID, Name: name, Kind: "npc"}
	f.entities.entities[e.ID] = e
	for i := range grants {
		grants[i].ResourceID = e.ID
	}
	f.accessRepo.Grants[e.ID] = grants
	return e
}

func (f *svcFixture) seedLocation(name string, parentID *ulid.ULID, grants ...access.Grant) *world.Location {
	l := &world.Location{ID: ulid.Make(), WorldID: f.worldID, Name: name, ParentID: parentID, LocationTypeID: ulid.Make()}
	f.locations.locations[l.ID] = l
	for i := range grants {
		grants[i].ResourceID = l.ID
	}
	f.accessRepo.Grants[l.ID] = grants
	return l
}

func (f *svcFixture) auditActions(resourceID ulid.ULID) []access.AuditAction {
	entries := f.accessRepo.History[resourceID]
	actions := make([]access.AuditAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}
