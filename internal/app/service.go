package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/semla/internal/storage"
	"github.com/shrimpsizemoose/semla/internal/store"
)

type Service struct {
	Config *Config
	Store  store.SubmissionStore
	// Objects is nil when object storage is not configured.
	Objects storage.ObjectStore
	// Guard is nil when redis is not configured.
	Guard *UploadGuard

	newKey func() string
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	objects, err := NewObjectStore(context.Background(), config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	guard, err := NewUploadGuard(config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init upload guard: %w", err)
	}

	return New(config, st, objects, guard), nil
}

// New wires a service from already constructed dependencies.
func New(config *Config, st store.SubmissionStore, objects storage.ObjectStore, guard *UploadGuard) *Service {
	return &Service{
		Config:  config,
		Store:   st,
		Objects: objects,
		Guard:   guard,
		newKey:  uuid.NewString,
	}
}

func (s *Service) downloadTTL() time.Duration {
	return time.Duration(s.Config.Policy.DownloadURLExpiresSeconds) * time.Second
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Guard.Close(); err != nil {
		errs = append(errs, fmt.Errorf("guard: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
