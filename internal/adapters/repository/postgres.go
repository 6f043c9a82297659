package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

// uniqueViolation is the postgres error code for a duplicate key
const uniqueViolation = "23505"

// NewPostgres returns repositories backed by postgres
func NewPostgres(db *sqlx.DB) ports.Repositories {
	return ports.Repositories{
		Users:     &UserRepositoryImpl{db: db},
		Tasks:     &TaskRepositoryImpl{db: db},
		Locations: &LocationRepositoryImpl{db: db},
	}
}

// SeedPostgres inserts the fixed location hierarchy, leaving existing rows alone
func SeedPostgres(ctx context.Context, db *sqlx.DB) error {
	query := `
		INSERT INTO locations (id, parent_id, level, name, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	for i, loc := range SeedLocations() {
		if _, err := db.ExecContext(ctx, query, loc.ID, loc.ParentID, int(loc.Level), loc.Name, i); err != nil {
			return fmt.Errorf("seed location %s: %w", loc.ID, err)
		}
	}
	return nil
}

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

func (r *UserRepositoryImpl) Create(ctx context.Context, account *entities.Account) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.Name, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return entities.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE id = $1`

	var account entities.Account
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &account, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = $1`

	var account entities.Account
	err := r.db.GetContext(ctx, &account, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &account, nil
}

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

const taskColumns = `id, owner_id, title, description, state_id, district_id, city_id, image, status, created_at, updated_at`

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.StoredTask) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (:id, :owner_id, :title, :description, :state_id, :district_id, :city_id, :image, :status, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, ownerID, id string) (*entities.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	var task entities.StoredTask
	err := r.db.GetContext(ctx, &task, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]*entities.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at, id`

	var tasks []*entities.StoredTask
	if err := r.db.SelectContext(ctx, &tasks, query, ownerID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.StoredTask) error {
	query := `
		UPDATE tasks
		SET title = :title, description = :description, state_id = :state_id,
			district_id = :district_id, city_id = :city_id, image = :image,
			status = :status, updated_at = :updated_at
		WHERE id = :id AND owner_id = :owner_id`

	result, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return requireRow(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return requireRow(result, entities.ErrTaskNotFound)
}

// LocationRepositoryImpl implements the LocationRepository interface
type LocationRepositoryImpl struct {
	db *sqlx.DB
}

func (r *LocationRepositoryImpl) Children(ctx context.Context, level entities.LocationLevel, parentID string) ([]*entities.Location, error) {
	query := `
		SELECT id, parent_id, level, name
		FROM locations
		WHERE level = $1 AND parent_id = $2
		ORDER BY position, id`

	var locations []*entities.Location
	if err := r.db.SelectContext(ctx, &locations, query, int(level), parentID); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	return locations, nil
}

func (r *LocationRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Location, error) {
	query := `SELECT id, parent_id, level, name FROM locations WHERE id = $1`

	var loc entities.Location
	err := r.db.GetContext(ctx, &loc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrLocationNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}

	return &loc, nil
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
