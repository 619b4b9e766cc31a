// Package ckdb holds the top-level state handle every handler operates
// on: one in-memory mirror per entity plus the DB-only idcontrol
// accessor, bundled behind a single struct instead of the source's
// ambient global tables (spec.md §9 "Global mutable tables" redesign
// flag).
//
// Fields are declared in the entity order from spec.md §5 (users →
// workers → payments → workinfo → shares → shareerrors → auths →
// poolstats → idcontrol). State itself takes no locks: each entity
// mirror's table holds its own lock only for the duration of one table
// call, and no handler holds two table locks at once, so no cross-table
// acquisition order arises.
package ckdb

import (
	"context"

	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/entity"
)

// State bundles every entity mirror ckdbd's handlers operate on.
type State struct {
	Users       *entity.Users
	Workers     *entity.Workers
	Payments    *entity.Payments
	WorkInfos   *entity.WorkInfos
	Shares      *entity.Shares
	ShareErrors *entity.ShareErrors
	Auths       *entity.Auths
	PoolStats   *entity.PoolStats
	IDControl   *entity.IDControl

	DB dbgateway.DB
}

// New constructs an empty State backed by gw.
func New(gw dbgateway.DB) *State {
	return &State{
		Users:       entity.NewUsers(),
		Workers:     entity.NewWorkers(),
		Payments:    entity.NewPayments(),
		WorkInfos:   entity.NewWorkInfos(),
		Shares:      entity.NewShares(),
		ShareErrors: entity.NewShareErrors(),
		Auths:       entity.NewAuths(),
		PoolStats:   entity.NewPoolStats(),
		IDControl:   entity.NewIDControl(),
		DB:          gw,
	}
}

// Fill populates every DB-backed entity mirror from its live rows,
// following the §5 field order of State (workinfo
// included — Fill is always run once at boot regardless of the Reload
// policy decided for that entity).
func (s *State) Fill(ctx context.Context) error {
	fillers := []func(context.Context, dbgateway.DB) error{
		s.Users.Fill,
		s.Workers.Fill,
		s.Payments.Fill,
		s.WorkInfos.Fill,
		s.Auths.Fill,
		s.PoolStats.Fill,
	}
	for _, fill := range fillers {
		if err := fill(ctx, s.DB); err != nil {
			return err
		}
	}
	return nil
}
