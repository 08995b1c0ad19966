package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evolt/internal/models"
	"evolt/internal/repository"
)

var (
	// ErrStationNotFound represents a missing station.
	ErrStationNotFound = errors.New("stations: station not found")
	// ErrAccessDenied is returned when the access policy denies a mutation.
	ErrAccessDenied = errors.New("stations: access denied")
)

// StationRepository defines storage contract used by the service.
type StationRepository interface {
	Create(ctx context.Context, station *models.Station) error
	List(ctx context.Context, filters models.StationFilters) ([]models.StationListItem, error)
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	Update(ctx context.Context, station *models.Station) error
	Delete(ctx context.Context, id int64) error
}

// StationService implements station CRUD with validation and the
// owner-or-admin access policy.
type StationService struct {
	repo   StationRepository
	logger *zap.Logger
}

// NewStationService builds StationService.
func NewStationService(repo StationRepository, logger *zap.Logger) *StationService {
	return &StationService{repo: repo, logger: logger}
}

// Create validates the input and persists a station owned by ownerID.
func (s *StationService) Create(ctx context.Context, input models.StationInput, ownerID int64) (*models.Station, error) {
	if err := models.NewValidationError(input.Validate()); err != nil {
		return nil, err
	}

	station := &models.Station{
		Status:    models.StatusActive,
		CreatedBy: ownerID,
	}
	input.Apply(station)

	if err := s.repo.Create(ctx, station); err != nil {
		return nil, err
	}

	s.logger.Info("station created",
		zap.Int64("station_id", station.ID),
		zap.Int64("owner_id", ownerID))
	return station, nil
}

// List returns stations matching the filters. An authenticated viewer gets
// owner enrichment and a canModify hint; anonymous callers get plain records.
func (s *StationService) List(ctx context.Context, filters models.StationFilters, viewer *Actor) ([]models.StationListItem, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if viewer == nil {
			items[i].Owner = nil
			items[i].CanModify = false
			continue
		}
		items[i].CanModify = CanModify(*viewer, &items[i].Station)
	}
	return items, nil
}

// GetByID returns the station or ErrStationNotFound.
func (s *StationService) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	station, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return station, nil
}

// Update merges the input into the station after the access policy allows it.
// CreatedBy is never altered even if present in the request body.
func (s *StationService) Update(ctx context.Context, id int64, input models.StationInput, actor Actor) (*models.Station, error) {
	station, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanModify(actor, station) {
		return nil, ErrAccessDenied
	}

	if err := models.NewValidationError(input.ValidatePartial()); err != nil {
		return nil, err
	}

	input.Apply(station)

	if err := s.repo.Update(ctx, station); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	s.logger.Info("station updated",
		zap.Int64("station_id", station.ID),
		zap.Int64("actor_id", actor.ID))
	return station, nil
}

// Delete removes the station after the access policy allows it. Deleting an
// already-deleted id yields ErrStationNotFound, never a second success.
func (s *StationService) Delete(ctx context.Context, id int64, actor Actor) error {
	station, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanModify(actor, station) {
		return ErrAccessDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return ErrStationNotFound
		}
		return err
	}

	s.logger.Info("station deleted",
		zap.Int64("station_id", id),
		zap.Int64("actor_id", actor.ID))
	return nil
}
