// Package mutation implements the optimistic mutation protocol shared by the
// feed's upvote and the comment thread's create/delete: apply the local
// effect first, send, then either trust the local value or resync the whole
// owning collection from the backend.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// State tracks one mutation instance through its lifecycle.
type State int

const (
	Idle State = iota
	Applied
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Op describes one optimistic mutation.
//
// Apply runs synchronously before Send is dispatched, so the local effect is
// visible regardless of network latency. On Send failure the policy is a
// full resync of the owning collection rather than a compensating edit:
// other sessions may have changed the authoritative value in the interim, so
// reloading is the only way to converge on truth.
type Op struct {
	// Name tags log lines, e.g. "upvote" or "comment.create".
	Name   string
	Apply  func()
	Send   func(ctx context.Context) error
	Resync func(ctx context.Context) error
}

// Run drives one instance through Idle -> Applied -> {Confirmed, RolledBack}
// and returns the terminal state. On rollback the send error is returned,
// joined with the resync error if the resync itself also failed.
func Run(ctx context.Context, op Op) (State, error) {
	id := uuid.NewString()

	if op.Apply != nil {
		op.Apply()
	}

	if err := op.Send(ctx); err != nil {
		log.Printf("mutation %s %s failed, resyncing: %v", op.Name, id, err)
		if op.Resync != nil {
			if resyncErr := op.Resync(ctx); resyncErr != nil {
				return RolledBack, errors.Join(err, fmt.Errorf("resync after rollback: %w", resyncErr))
			}
		}
		return RolledBack, err
	}

	return Confirmed, nil
}
