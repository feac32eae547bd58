// Package actor contains the concurrent core of the poker hall: a generic
// handle registry, the per-table room actor, the per-connection player
// actor, and the broadcast fan-out that links them. Every actor owns its
// state behind a bounded mailbox and processes messages one at a time.
package actor

import (
	"context"
	"time"
)

// Defaults for actor plumbing. Mailboxes and broadcast buffers stay small;
// laggards drop messages rather than stall producers.
const (
	DefaultChannelSize = 8
	DefaultTurnTimeout = 30 * time.Second
)

type registryOp int

const (
	opGet registryOp = iota
	opGetAll
	opSet
	opDelete
	opCompareDelete
)

type getReply[H any] struct {
	handle H
	ok     bool
}

type registryMsg[ID comparable, H comparable] struct {
	op     registryOp
	id     ID
	handle H
	get    chan getReply[H]
	getAll chan []H
}

// Registry guards an id-to-handle map behind a serial mailbox so concurrent
// lookups and mutations are linearisable. The process runs two: one for
// rooms and one for players.
type Registry[ID comparable, H comparable] struct {
	mailbox chan registryMsg[ID, H]
	done    chan struct{}
}

// NewRegistry starts a registry actor that runs until ctx is cancelled.
func NewRegistry[ID comparable, H comparable](ctx context.Context) *Registry[ID, H] {
	r := &Registry[ID, H]{
		mailbox: make(chan registryMsg[ID, H], DefaultChannelSize),
		done:    make(chan struct{}),
	}
	go r.run(ctx)
	return r
}

func (r *Registry[ID, H]) run(ctx context.Context) {
	defer close(r.done)
	handles := make(map[ID]H)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.mailbox:
			switch msg.op {
			case opGet:
				handle, ok := handles[msg.id]
				msg.get <- getReply[H]{handle: handle, ok: ok}
			case opGetAll:
				all := make([]H, 0, len(handles))
				for _, handle := range handles {
					all = append(all, handle)
				}
				msg.getAll <- all
			case opSet:
				handles[msg.id] = msg.handle
			case opDelete:
				delete(handles, msg.id)
			case opCompareDelete:
				if handles[msg.id] == msg.handle {
					delete(handles, msg.id)
				}
			}
		}
	}
}

// Get looks up a handle. A stopped registry or cancelled context reads as a
// miss.
func (r *Registry[ID, H]) Get(ctx context.Context, id ID) (H, bool) {
	var zero H
	reply := make(chan getReply[H], 1)
	select {
	case r.mailbox <- registryMsg[ID, H]{op: opGet, id: id, get: reply}:
	case <-r.done:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
	select {
	case rep := <-reply:
		return rep.handle, rep.ok
	case <-r.done:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// GetAll returns every registered handle in unspecified order.
func (r *Registry[ID, H]) GetAll(ctx context.Context) []H {
	reply := make(chan []H, 1)
	select {
	case r.mailbox <- registryMsg[ID, H]{op: opGetAll, getAll: reply}:
	case <-r.done:
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case all := <-reply:
		return all
	case <-r.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Set upserts a handle.
func (r *Registry[ID, H]) Set(ctx context.Context, id ID, handle H) {
	select {
	case r.mailbox <- registryMsg[ID, H]{op: opSet, id: id, handle: handle}:
	case <-r.done:
	case <-ctx.Done():
	}
}

// Delete removes a handle; removing an absent id is a no-op.
func (r *Registry[ID, H]) Delete(ctx context.Context, id ID) {
	select {
	case r.mailbox <- registryMsg[ID, H]{op: opDelete, id: id}:
	case <-r.done:
	case <-ctx.Done():
	}
}

// CompareAndDelete removes the id only if it still maps to handle. An actor
// deregistering itself uses this so it cannot evict a replacement that
// registered under the same id.
func (r *Registry[ID, H]) CompareAndDelete(ctx context.Context, id ID, handle H) {
	select {
	case r.mailbox <- registryMsg[ID, H]{op: opCompareDelete, id: id, handle: handle}:
	case <-r.done:
	case <-ctx.Done():
	}
}
