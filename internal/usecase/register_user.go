package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase/shared"
)

// RegisterUserInput contains the parameters for registering a user.
type RegisterUserInput struct {
	Email    string // Unique email (required)
	FullName string // Display name (optional)
	Role     string // Role (empty = member)
}

// RegisterUserOutput contains the registered user.
type RegisterUserOutput struct {
	User *domain.User
}

// RegisterUser is the use case for adding a user.
type RegisterUser struct {
	store  domain.Store
	clock  domain.Clock
	logger domain.Logger
}

// NewRegisterUser creates a new RegisterUser use case.
func NewRegisterUser(store domain.Store, clock domain.Clock, logger domain.Logger) *RegisterUser {
	return &RegisterUser{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Execute registers a user. Emails must be unique.
func (uc *RegisterUser) Execute(ctx context.Context, in RegisterUserInput) (*RegisterUserOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	role := domain.RoleMember
	if in.Role != "" {
		var err error
		if role, err = domain.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		Email:     email,
		FullName:  in.FullName,
		Role:      role,
		Active:    true,
		CreatedAt: uc.clock.Now(),
	}
	err := uc.store.WithTx(ctx, func(tx domain.Tx) error {
		existing, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}
		if err := tx.InsertUser(ctx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info(0, "user", fmt.Sprintf("[%s] registered user %d <%s> as %s", shared.NewOpID(), user.ID, user.Email, user.Role))
	return &RegisterUserOutput{User: user}, nil
}
