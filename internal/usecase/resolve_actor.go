package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// ResolveActorInput names the acting user by numeric ID or email.
type ResolveActorInput struct {
	Ref string
}

// ResolveActorOutput contains the acting user.
type ResolveActorOutput struct {
	User  *domain.User
	Actor domain.Actor
}

// ResolveActor turns a user reference into the identity mutations run as.
type ResolveActor struct {
	store domain.Store
}

// NewResolveActor creates a new ResolveActor use case.
func NewResolveActor(store domain.Store) *ResolveActor {
	return &ResolveActor{store: store}
}

// Execute looks up the referenced user. An empty reference is rejected with
// domain.ErrNoActor; an unknown one with domain.ErrUserNotFound.
func (uc *ResolveActor) Execute(ctx context.Context, in ResolveActorInput) (*ResolveActorOutput, error) {
	ref := strings.TrimSpace(in.Ref)
	if ref == "" {
		return nil, domain.ErrNoActor
	}

	var user *domain.User
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			user, err = shared.GetUser(ctx, tx, id)
			return err
		}
		u, err := tx.GetUserByEmail(ctx, ref)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, ref)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ResolveActorOutput{User: user, Actor: user.Actor()}, nil
}
