package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// ContextUserKey is where the bearer middleware stores the account id
const ContextUserKey = "user"

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles account registration
// @Summary Register an account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param credentials body ports.Credentials true "Email and password"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} MessageResponse
// @Failure 409 {object} MessageResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req ports.Credentials
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.Signup(c.Request().Context(), req); err != nil {
		h.logger.Warnw("Signup failed", "error", err, "email", req.Email)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

// Login handles user login
// @Summary Log in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param credentials body ports.Credentials true "Email and password"
// @Success 200 {object} ports.LoginResponse
// @Failure 401 {object} MessageResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Login failed", "error", err, "email", req.Email)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// LocationHandler serves the location hierarchy
type LocationHandler struct {
	locationService ports.LocationService
	logger          *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService ports.LocationService, logger *logger.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		logger:          logger,
	}
}

// States lists the states
// @Summary List states
// @Tags Locations
// @Produce json
// @Success 200 {array} entities.LocationNode
// @Router /states [get]
func (h *LocationHandler) States(c echo.Context) error {
	nodes, err := h.locationService.States(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, nodes)
}

// Districts lists the districts of a state
// @Summary List districts of a state
// @Tags Locations
// @Produce json
// @Param id path string true "State ID"
// @Success 200 {array} entities.LocationNode
// @Failure 404 {object} MessageResponse
// @Router /districts/{id} [get]
func (h *LocationHandler) Districts(c echo.Context) error {
	nodes, err := h.locationService.Districts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, nodes)
}

// Cities lists the cities of a district
// @Summary List cities of a district
// @Tags Locations
// @Produce json
// @Param id path string true "District ID"
// @Success 200 {array} entities.LocationNode
// @Failure 404 {object} MessageResponse
// @Router /cities/{id} [get]
func (h *LocationHandler) Cities(c echo.Context) error {
	nodes, err := h.locationService.Cities(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, nodes)
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService  ports.TaskService
	imageService ports.ImageService
	logger       *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, imageService ports.ImageService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		imageService: imageService,
		logger:       logger,
	}
}

// UploadImage stores a task image
// @Summary Upload a task image
// @Tags Tasks
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} ports.UploadResponse
// @Failure 400 {object} MessageResponse
// @Security BearerAuth
// @Router /uploadimage [post]
func (h *TaskHandler) UploadImage(c echo.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}

	file, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read image")
	}
	defer file.Close()

	imagePath, err := h.imageService.Save(c.Request().Context(), header.Filename, file)
	if err != nil {
		h.logger.Errorw("Image upload failed", "error", err, "user_id", userID(c))
		return echo.NewHTTPError(http.StatusInternalServerError, "Image upload failed")
	}

	return c.JSON(http.StatusOK, ports.UploadResponse{ImageURL: imagePath})
}

// CreateTask handles task creation
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task body ports.TaskInput true "Task"
// @Success 201 {object} entities.Task
// @Failure 400 {object} MessageResponse
// @Security BearerAuth
// @Router /createtasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.TaskInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), userID(c), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks lists the caller's tasks
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Security BearerAuth
// @Router /taskslist [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// UpdateTask handles task edits
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param task body ports.TaskInput true "Task"
// @Success 200 {object} entities.Task
// @Failure 404 {object} MessageResponse
// @Security BearerAuth
// @Router /updatetasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req ports.TaskInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), userID(c), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Security BearerAuth
// @Router /deletetasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func userID(c echo.Context) string {
	id, _ := c.Get(ContextUserKey).(string)
	return id
}

// httpError maps domain errors to status codes
func httpError(err error) error {
	switch {
	case errors.Is(err, entities.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	case errors.Is(err, entities.ErrLocationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Location not found")
	case errors.Is(err, entities.ErrInconsistentLocation):
		return echo.NewHTTPError(http.StatusBadRequest, "Selected state, district and city do not match")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}
