package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JonMunkholm/leaddist/internal/logging"
)

// Service applies validation and password hashing on top of a Store.
type Service struct {
	store Store
	cost  int
}

// NewService creates a Service hashing passwords at the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewService(store Store, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: cost}
}

// List returns every agent, newest first.
func (s *Service) List(ctx context.Context) ([]Agent, error) {
	return s.store.ListAgents(ctx)
}

// Get returns one agent. IDs that are not UUIDs are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (Agent, error) {
	if !validID(id) {
		return Agent{}, ErrNotFound
	}
	return s.store.GetAgent(ctx, id)
}

// Create validates in, hashes the password and inserts the agent.
// New agents are active unless IsActive is explicitly false.
func (s *Service) Create(ctx context.Context, in CreateInput) (Agent, error) {
	in = normalizeCreate(in)
	if err := validateCreate(in); err != nil {
		return Agent{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return Agent{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	agent, err := s.store.CreateAgent(ctx, NewAgent{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		CountryCode:  in.CountryCode,
		Mobile:       in.Mobile,
		PasswordHash: hash,
		IsActive:     active,
	})
	if err != nil {
		return Agent{}, err
	}

	logging.FromContext(ctx).Info("agent created", "agent_id", agent.ID)
	return agent, nil
}

// Update applies the supplied fields. The password is re-hashed only when a
// non-empty one is given.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Agent, error) {
	if !validID(id) {
		return Agent{}, ErrNotFound
	}

	in = normalizeUpdate(in)
	if err := validateUpdate(in); err != nil {
		return Agent{}, err
	}

	changes := Changes{
		Name:        in.Name,
		Email:       in.Email,
		CountryCode: in.CountryCode,
		Mobile:      in.Mobile,
		IsActive:    in.IsActive,
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return Agent{}, err
		}
		changes.PasswordHash = &hash
	}

	agent, err := s.store.UpdateAgent(ctx, id, changes)
	if err != nil {
		return Agent{}, err
	}

	logging.FromContext(ctx).Info("agent updated", "agent_id", id, "password_changed", changes.PasswordHash != nil)
	return agent, nil
}

// Delete removes an agent. Past distributions keep their copy of its name.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := s.store.DeleteAgent(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("agent deleted", "agent_id", id)
	return nil
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
