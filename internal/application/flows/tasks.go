package flows

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// TaskForm holds the editable fields of the create and edit screens.
type TaskForm struct {
	Title       string
	Description string
	Status      entities.TaskStatus
	Image       *ports.Image
}

// taskEditor is the state shared by the create and edit screens.
type taskEditor struct {
	lifecycle
	inflight

	api      ports.TaskAPI
	sessions *SessionManager
	logger   *logger.Logger

	picker *LocationPicker

	mu   sync.Mutex
	form TaskForm
}

func (e *taskEditor) init(api ports.API, sessions *SessionManager, log *logger.Logger, component string) {
	if log == nil {
		log = logger.NewNop()
	}
	e.api = api
	e.sessions = sessions
	e.logger = log.WithComponent(component)
	e.picker = NewLocationPicker(api, WithActive(e.Active))
}

// Picker returns the screen's location selector.
func (e *taskEditor) Picker() *LocationPicker {
	return e.picker
}

// SetTitle updates the title field.
func (e *taskEditor) SetTitle(title string) {
	e.mu.Lock()
	e.form.Title = title
	e.mu.Unlock()
}

// SetDescription updates the description field.
func (e *taskEditor) SetDescription(description string) {
	e.mu.Lock()
	e.form.Description = description
	e.mu.Unlock()
}

// AttachImage sets the image to upload on submit. nil detaches it.
func (e *taskEditor) AttachImage(image *ports.Image) {
	e.mu.Lock()
	e.form.Image = image
	e.mu.Unlock()
}

// Form returns a copy of the current field values.
func (e *taskEditor) Form() TaskForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

func (e *taskEditor) input() (ports.TaskInput, *ports.Image) {
	form := e.Form()
	state, district, city := e.picker.Selection()
	return ports.TaskInput{
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
		State:       state,
		District:    district,
		City:        city,
		Status:      form.Status,
	}, form.Image
}

func (e *taskEditor) authorized(ctx context.Context) bool {
	_, ok := e.sessions.Token(ctx)
	return ok
}

// CreateTaskScreen uploads the optional image and then creates the task.
type CreateTaskScreen struct {
	taskEditor
}

// NewCreateTaskScreen creates an empty create form.
func NewCreateTaskScreen(api ports.API, sessions *SessionManager, log *logger.Logger) *CreateTaskScreen {
	s := &CreateTaskScreen{}
	s.init(api, sessions, log, "create_task")
	return s
}

// Open loads the state options.
func (s *CreateTaskScreen) Open(ctx context.Context) error {
	return s.picker.LoadStates(ctx)
}

// Submit validates the form, uploads the image when one is attached and
// creates the task. A failed upload skips the create call. On success the
// form is cleared and the next screen is the task list.
func (s *CreateTaskScreen) Submit(ctx context.Context) (Screen, *entities.Task, error) {
	input, image := s.input()
	if err := validateTaskInput(input); err != nil {
		return ScreenCreateTask, nil, err
	}
	if !s.authorized(ctx) {
		return ScreenLogin, nil, ErrAuthRequired
	}

	done, err := s.begin()
	if err != nil {
		return ScreenCreateTask, nil, err
	}
	defer done()

	if image != nil {
		url, err := s.api.UploadImage(ctx, *image)
		if err != nil {
			s.logger.WithError(err).Warnw("Image upload failed", "path", image.Path)
			return ScreenCreateTask, nil, fmt.Errorf("%w: %w", ErrImageUploadFailed, err)
		}
		input.ImageURL = url
	}

	task, err := s.api.CreateTask(ctx, input)
	if err != nil {
		return ScreenCreateTask, nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID)
	if !s.Active() {
		return ScreenCreateTask, task, nil
	}
	s.mu.Lock()
	s.form = TaskForm{}
	s.mu.Unlock()
	s.picker.Clear()
	return ScreenTaskList, task, nil
}

// EditTaskScreen updates an existing task.
type EditTaskScreen struct {
	taskEditor
	task entities.Task
}

// NewEditTaskScreen creates an edit form seeded from task.
func NewEditTaskScreen(api ports.API, sessions *SessionManager, log *logger.Logger, task entities.Task) *EditTaskScreen {
	s := &EditTaskScreen{task: task}
	s.init(api, sessions, log, "edit_task")
	s.form = TaskForm{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
	}
	return s
}

// Task returns the task being edited.
func (s *EditTaskScreen) Task() entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// SetStatus updates the status field.
func (s *EditTaskScreen) SetStatus(status entities.TaskStatus) {
	s.mu.Lock()
	s.form.Status = status
	s.mu.Unlock()
}

// Open loads the cascade and preselects the task's current locations.
func (s *EditTaskScreen) Open(ctx context.Context) error {
	task := s.Task()
	return s.picker.Preset(ctx, task.State.ID, task.District.ID, task.City.ID)
}

// Submit validates and saves the edit. An attached image is uploaded first
// and replaces the old one; otherwise the existing image is kept.
func (s *EditTaskScreen) Submit(ctx context.Context) (Screen, *entities.Task, error) {
	input, image := s.input()
	if err := validateTaskInput(input); err != nil {
		return ScreenEditTask, nil, err
	}
	if !s.authorized(ctx) {
		return ScreenLogin, nil, ErrAuthRequired
	}

	done, err := s.begin()
	if err != nil {
		return ScreenEditTask, nil, err
	}
	defer done()

	current := s.Task()
	input.ImageURL = current.Image
	if image != nil {
		url, err := s.api.UploadImage(ctx, *image)
		if err != nil {
			return ScreenEditTask, nil, fmt.Errorf("%w: %w", ErrImageUploadFailed, err)
		}
		input.ImageURL = url
	}

	task, err := s.api.UpdateTask(ctx, current.ID, input)
	if err != nil {
		return ScreenEditTask, nil, fmt.Errorf("update task %s: %w", current.ID, err)
	}
	s.logger.Infow("Task updated", "task_id", task.ID)
	if !s.Active() {
		return ScreenEditTask, task, nil
	}
	s.mu.Lock()
	s.task = *task
	s.mu.Unlock()
	return ScreenTaskList, task, nil
}

// ListState is the display state of the task list.
type ListState string

const (
	ListIdle      ListState = "idle"
	ListLoading   ListState = "loading"
	ListPopulated ListState = "populated"
	ListEmpty     ListState = "empty"
	ListError     ListState = "error"
)

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(title, prompt string) bool

// TaskListScreen shows the user's tasks and deletes them on request.
type TaskListScreen struct {
	lifecycle
	inflight

	api    ports.TaskAPI
	logger *logger.Logger

	mu    sync.Mutex
	state ListState
	tasks []entities.Task
	err   error
}

// NewTaskListScreen creates an idle list.
func NewTaskListScreen(api ports.TaskAPI, log *logger.Logger) *TaskListScreen {
	if log == nil {
		log = logger.NewNop()
	}
	return &TaskListScreen{
		api:    api,
		logger: log.WithComponent("task_list"),
		state:  ListIdle,
	}
}

// Load fetches the list. Refresh is the same call.
func (s *TaskListScreen) Load(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	s.state = ListLoading
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx)
	if !s.Active() {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.state, s.err = ListError, err
		return fmt.Errorf("load tasks: %w", err)
	case len(tasks) == 0:
		s.state, s.tasks, s.err = ListEmpty, nil, nil
	default:
		s.state, s.tasks, s.err = ListPopulated, tasks, nil
	}
	return nil
}

// Refresh reloads the list.
func (s *TaskListScreen) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Delete asks for confirmation and deletes the task. The task leaves the
// list only after the server confirmed; on failure the list is unchanged.
// deleted is false when the user declined.
func (s *TaskListScreen) Delete(ctx context.Context, id entities.ID, confirm ConfirmFunc) (deleted bool, err error) {
	if confirm != nil && !confirm("Delete Task", "Are you sure you want to delete this task?") {
		return false, nil
	}

	done, err := s.begin()
	if err != nil {
		return false, err
	}
	defer done()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.logger.WithError(err).Warnw("Failed to delete task", "task_id", id)
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}

	if s.Active() {
		s.mu.Lock()
		for i, t := range s.tasks {
			if t.ID == id {
				s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
				break
			}
		}
		if s.state == ListPopulated && len(s.tasks) == 0 {
			s.state, s.tasks = ListEmpty, nil
		}
		s.mu.Unlock()
	}
	return true, nil
}

// State returns the display state.
func (s *TaskListScreen) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tasks returns a copy of the loaded tasks.
func (s *TaskListScreen) Tasks() []entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Err returns the error behind ListError.
func (s *TaskListScreen) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
