package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo     ports.TaskRepository
	locationRepo ports.LocationRepository
	logger       *logger.Logger
	now          func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, locationRepo ports.LocationRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		locationRepo: locationRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateTask creates a task owned by ownerID
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, req ports.TaskInput) (*entities.Task, error) {
	refs, err := s.resolveLocations(ctx, req)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = entities.TaskStatusPending
	}

	now := s.now()
	stored := &entities.StoredTask{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StateID:     req.State.String(),
		DistrictID:  req.District.String(),
		CityID:      req.City.String(),
		Image:       req.ImageURL,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created successfully", "task_id", stored.ID, "owner_id", ownerID)

	task := refs.task(stored)
	return &task, nil
}

// ListTasks returns every task of ownerID with populated locations
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]entities.Task, error) {
	stored, err := s.taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]entities.Task, 0, len(stored))
	cache := make(map[string]entities.LocationRef)
	for _, st := range stored {
		refs := locationRefs{
			state:    s.ref(ctx, cache, st.StateID),
			district: s.ref(ctx, cache, st.DistrictID),
			city:     s.ref(ctx, cache, st.CityID),
		}
		tasks = append(tasks, refs.task(st))
	}
	return tasks, nil
}

// UpdateTask replaces the editable fields of a task
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id string, req ports.TaskInput) (*entities.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.resolveLocations(ctx, req)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(req.Title)
	existing.Description = req.Description
	existing.StateID = req.State.String()
	existing.DistrictID = req.District.String()
	existing.CityID = req.City.String()
	if req.ImageURL != "" {
		existing.Image = req.ImageURL
	}
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.UpdatedAt = s.now()

	if err := s.taskRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated successfully", "task_id", id, "owner_id", ownerID)

	task := refs.task(existing)
	return &task, nil
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := s.taskRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Infow("Task deleted successfully", "task_id", id, "owner_id", ownerID)
	return nil
}

type locationRefs struct {
	state, district, city entities.LocationRef
}

func (r locationRefs) task(st *entities.StoredTask) entities.Task {
	return entities.Task{
		ID:          entities.ID(st.ID),
		Title:       st.Title,
		Description: st.Description,
		State:       r.state,
		District:    r.district,
		City:        r.city,
		Image:       st.Image,
		Status:      st.Status,
	}
}

// resolveLocations checks that the city lies in the district and the
// district in the state.
func (s *TaskService) resolveLocations(ctx context.Context, req ports.TaskInput) (locationRefs, error) {
	chain := []struct {
		id     entities.ID
		level  entities.LocationLevel
		parent entities.ID
	}{
		{req.State, entities.LevelState, ""},
		{req.District, entities.LevelDistrict, req.State},
		{req.City, entities.LevelCity, req.District},
	}

	var refs [3]entities.LocationRef
	for i, link := range chain {
		loc, err := s.locationRepo.GetByID(ctx, link.id.String())
		if err != nil {
			if errors.Is(err, entities.ErrLocationNotFound) {
				return locationRefs{}, entities.ErrInconsistentLocation
			}
			return locationRefs{}, fmt.Errorf("failed to resolve %s: %w", link.level, err)
		}
		if loc.Level != link.level || loc.ParentID != link.parent.String() {
			return locationRefs{}, entities.ErrInconsistentLocation
		}
		refs[i] = entities.LocationRef{ID: entities.ID(loc.ID), Name: loc.Name}
	}
	return locationRefs{state: refs[0], district: refs[1], city: refs[2]}, nil
}

// ref populates a stored location id, falling back to a bare id when the
// location has disappeared.
func (s *TaskService) ref(ctx context.Context, cache map[string]entities.LocationRef, id string) entities.LocationRef {
	if r, ok := cache[id]; ok {
		return r
	}
	r := entities.LocationRef{ID: entities.ID(id)}
	if loc, err := s.locationRepo.GetByID(ctx, id); err == nil {
		r.Name = loc.Name
	}
	cache[id] = r
	return r
}
