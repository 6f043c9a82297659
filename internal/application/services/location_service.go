package services

import (
	"context"
	"fmt"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// LocationService serves the State > District > City hierarchy
type LocationService struct {
	locationRepo ports.LocationRepository
	logger       *logger.Logger
}

// NewLocationService creates a new location service
func NewLocationService(locationRepo ports.LocationRepository, logger *logger.Logger) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		logger:       logger,
	}
}

// States lists every state
func (s *LocationService) States(ctx context.Context) ([]entities.LocationNode, error) {
	return s.children(ctx, entities.LevelState, "")
}

// Districts lists the districts of a state
func (s *LocationService) Districts(ctx context.Context, stateID string) ([]entities.LocationNode, error) {
	if err := s.requireLevel(ctx, stateID, entities.LevelState); err != nil {
		return nil, err
	}
	return s.children(ctx, entities.LevelDistrict, stateID)
}

// Cities lists the cities of a district
func (s *LocationService) Cities(ctx context.Context, districtID string) ([]entities.LocationNode, error) {
	if err := s.requireLevel(ctx, districtID, entities.LevelDistrict); err != nil {
		return nil, err
	}
	return s.children(ctx, entities.LevelCity, districtID)
}

func (s *LocationService) requireLevel(ctx context.Context, id string, level entities.LocationLevel) error {
	loc, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc.Level != level {
		return entities.ErrLocationNotFound
	}
	return nil
}

func (s *LocationService) children(ctx context.Context, level entities.LocationLevel, parentID string) ([]entities.LocationNode, error) {
	locations, err := s.locationRepo.Children(ctx, level, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s locations: %w", level, err)
	}

	nodes := make([]entities.LocationNode, 0, len(locations))
	for _, loc := range locations {
		nodes = append(nodes, loc.Node())
	}
	return nodes, nil
}
