package flows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

func fillLocations(t *testing.T, p *LocationPicker) {
	t.Helper()
	mustSelect(t, p, entities.LevelState, "st-mh")
	mustSelect(t, p, entities.LevelDistrict, "ds-pune")
	mustSelect(t, p, entities.LevelCity, "ct-baner")
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		locations bool
		want      string
	}{
		{"blank title", "   ", true, MsgTitleRequired},
		{"title before locations", "", false, MsgTitleRequired},
		{"missing locations", "Fix pothole", false, MsgLocationsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := &fakeAPI{}
			screen := NewCreateTaskScreen(api, loggedInStore(t), nil)
			if err := screen.Open(ctx); err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			screen.SetTitle(tt.title)
			if tt.locations {
				fillLocations(t, screen.Picker())
			}

			next, _, err := screen.Submit(ctx)
			if got := Message(err); got != tt.want {
				t.Fatalf("Message() = %q, want %q", got, tt.want)
			}
			if next != ScreenCreateTask {
				t.Fatalf("next = %s, want %s", next, ScreenCreateTask)
			}
			if api.count("upload")+api.count("create") != 0 {
				t.Fatalf("network calls made for an invalid form")
			}
		})
	}
}

func TestCreateTaskWithoutSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	screen := NewCreateTaskScreen(api, NewSessionManager(&memStore{}, nil), nil)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetTitle("Fix pothole")
	fillLocations(t, screen.Picker())

	next, _, err := screen.Submit(ctx)
	if next != ScreenLogin || Message(err) != MsgAuthRequired {
		t.Fatalf("Submit() = %s, %q, want Login with %q", next, Message(err), MsgAuthRequired)
	}
	if api.count("create") != 0 {
		t.Fatalf("create called without a session")
	}
}

func TestCreateTaskUploadFailureSkipsCreate(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		upload: func(context.Context, ports.Image) (string, error) {
			return "", &entities.RequestFailedError{Status: 500}
		},
	}
	screen := NewCreateTaskScreen(api, loggedInStore(t), nil)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetTitle("Fix pothole")
	screen.AttachImage(&ports.Image{Path: "/tmp/none.jpg"})
	fillLocations(t, screen.Picker())

	next, task, err := screen.Submit(ctx)
	if !errors.Is(err, ErrImageUploadFailed) || Message(err) != MsgImageUpload {
		t.Fatalf("Submit() error = %v (%q), want image upload failure", err, Message(err))
	}
	if next != ScreenCreateTask || task != nil {
		t.Fatalf("Submit() = %s, %v", next, task)
	}
	if api.count("create") != 0 {
		t.Fatalf("create called after failed upload")
	}
	if screen.Form().Title != "Fix pothole" {
		t.Fatalf("form cleared after failure")
	}
}

func TestCreateTaskPending(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{
		create: func(_ context.Context, in ports.TaskInput) (*entities.Task, error) {
			close(started)
			<-release
			return &entities.Task{ID: "t1", Title: in.Title}, nil
		},
	}
	screen := NewCreateTaskScreen(api, loggedInStore(t), nil)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetTitle("Fix pothole")
	fillLocations(t, screen.Picker())

	done := make(chan error, 1)
	go func() {
		_, _, err := screen.Submit(ctx)
		done <- err
	}()
	<-started

	if !screen.Pending() {
		t.Fatalf("Pending() = false during submission")
	}
	if _, _, err := screen.Submit(ctx); !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("second Submit() error = %v, want ErrSubmissionPending", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() failed: %v", err)
	}
	if n := api.count("create"); n != 1 {
		t.Fatalf("create called %d times, want 1", n)
	}
}

func TestCreateListEditDelete(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t)
	ctx := context.Background()

	imagePath := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(imagePath, []byte("\xff\xd8\xff\xe0jpeg"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}

	create := NewCreateTaskScreen(h.api, h.sessions, nil)
	if err := create.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	create.SetTitle("  Fix pothole  ")
	create.SetDescription("Near the school")
	create.AttachImage(&ports.Image{Path: imagePath})
	fillLocations(t, create.Picker())

	next, task, err := create.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if next != ScreenTaskList {
		t.Fatalf("next = %s, want %s", next, ScreenTaskList)
	}
	if task.Title != "Fix pothole" || task.Image == "" || task.Status != entities.TaskStatusPending {
		t.Fatalf("created task = %+v", task)
	}
	if form := create.Form(); form.Title != "" || form.Image != nil {
		t.Fatalf("form not cleared: %+v", form)
	}
	if state, _, _ := create.Picker().Selection(); state != "" {
		t.Fatalf("locations not cleared: %s", state)
	}

	list := NewTaskListScreen(h.api, nil)
	if err := list.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if list.State() != ListPopulated || len(list.Tasks()) != 1 {
		t.Fatalf("list = %s with %d tasks", list.State(), len(list.Tasks()))
	}
	got := list.Tasks()[0]
	if got.State.Label() != "Maharashtra" || got.District.Label() != "Pune" || got.City.Label() != "Baner" {
		t.Fatalf("locations = %s/%s/%s", got.State.Label(), got.District.Label(), got.City.Label())
	}

	edit := NewEditTaskScreen(h.api, h.sessions, nil, got)
	if err := edit.Open(ctx); err != nil {
		t.Fatalf("edit Open() failed: %v", err)
	}
	edit.SetTitle("Fix big pothole")
	edit.SetStatus(entities.TaskStatusInProgress)
	mustSelect(t, edit.Picker(), entities.LevelCity, "ct-hinjewadi")

	next, updated, err := edit.Submit(ctx)
	if err != nil {
		t.Fatalf("edit Submit() failed: %v", err)
	}
	if next != ScreenTaskList {
		t.Fatalf("next = %s", next)
	}
	if updated.Title != "Fix big pothole" || updated.Status != entities.TaskStatusInProgress || updated.City.Label() != "Hinjewadi" {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.Image != task.Image {
		t.Fatalf("image = %q, want the original %q", updated.Image, task.Image)
	}

	deleted, err := list.Delete(ctx, got.ID, func(string, string) bool { return true })
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	if list.State() != ListEmpty {
		t.Fatalf("state = %s after deleting the last task", list.State())
	}

	if err := list.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if list.State() != ListEmpty {
		t.Fatalf("state = %s, want %s", list.State(), ListEmpty)
	}
}

func TestEditInvalidStatus(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	task := entities.Task{
		ID:       "t1",
		Title:    "Fix pothole",
		State:    entities.LocationRef{ID: "st-mh"},
		District: entities.LocationRef{ID: "ds-pune"},
		City:     entities.LocationRef{ID: "ct-baner"},
	}
	screen := NewEditTaskScreen(api, loggedInStore(t), nil, task)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetStatus("archived")

	if _, _, err := screen.Submit(ctx); Message(err) != MsgInvalidStatus {
		t.Fatalf("Submit() message = %q, want %q", Message(err), MsgInvalidStatus)
	}
	if api.count("update") != 0 {
		t.Fatalf("update called with an invalid status")
	}
}

func TestListStates(t *testing.T) {
	tests := []struct {
		name  string
		tasks []entities.Task
		err   error
		want  ListState
	}{
		{"populated", []entities.Task{{ID: "t1"}, {ID: "t2"}}, nil, ListPopulated},
		{"empty", []entities.Task{}, nil, ListEmpty},
		{"error", nil, &entities.NetworkError{Err: errors.New("refused")}, ListError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{list: func(context.Context) ([]entities.Task, error) { return tt.tasks, tt.err }}
			list := NewTaskListScreen(api, nil)
			if list.State() != ListIdle {
				t.Fatalf("initial state = %s", list.State())
			}

			err := list.Load(context.Background())
			if (err != nil) != (tt.err != nil) {
				t.Fatalf("Load() error = %v", err)
			}
			if list.State() != tt.want {
				t.Fatalf("state = %s, want %s", list.State(), tt.want)
			}
			if tt.err != nil && Message(list.Err()) != MsgServerUnreachable {
				t.Fatalf("Err() message = %q", Message(list.Err()))
			}
		})
	}
}

func TestDeleteFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		list: func(context.Context) ([]entities.Task, error) {
			return []entities.Task{{ID: "t1"}, {ID: "t2"}}, nil
		},
		remove: func(context.Context, entities.ID) error {
			return &entities.RequestFailedError{Status: 500}
		},
	}
	list := NewTaskListScreen(api, nil)
	if err := list.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	deleted, err := list.Delete(ctx, "t1", nil)
	if err == nil || deleted {
		t.Fatalf("Delete() = %v, %v, want failure", deleted, err)
	}
	if n := len(list.Tasks()); n != 2 {
		t.Fatalf("tasks = %d after failed delete, want 2", n)
	}
}

func TestDeleteDeclined(t *testing.T) {
	api := &fakeAPI{}
	list := NewTaskListScreen(api, nil)

	deleted, err := list.Delete(context.Background(), "t1", func(string, string) bool { return false })
	if err != nil || deleted {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	if api.count("delete") != 0 {
		t.Fatalf("delete called after the user declined")
	}
}

func TestDeleteSplicesOnlyTarget(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		list: func(context.Context) ([]entities.Task, error) {
			return []entities.Task{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}, nil
		},
		remove: func(context.Context, entities.ID) error { return nil },
	}
	list := NewTaskListScreen(api, nil)
	if err := list.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if _, err := list.Delete(ctx, "t2", nil); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	tasks := list.Tasks()
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t3" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if list.State() != ListPopulated {
		t.Fatalf("state = %s", list.State())
	}
}

func TestDisposedListDropsLateResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{list: func(context.Context) ([]entities.Task, error) {
		close(started)
		<-release
		return []entities.Task{{ID: "t1"}}, nil
	}}
	list := NewTaskListScreen(api, nil)

	done := make(chan error, 1)
	go func() { done <- list.Load(context.Background()) }()
	<-started
	list.Dispose()
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Load() did not return")
	}
	if len(list.Tasks()) != 0 || list.State() == ListPopulated {
		t.Fatalf("disposed screen applied a late result: %s", list.State())
	}
}

func TestDisposedCreateStaysPut(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{create: func(_ context.Context, in ports.TaskInput) (*entities.Task, error) {
		close(started)
		<-release
		return &entities.Task{ID: "t1", Title: in.Title}, nil
	}}
	screen := NewCreateTaskScreen(api, loggedInStore(t), nil)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetTitle("Fix pothole")
	fillLocations(t, screen.Picker())

	type result struct {
		next Screen
		err  error
	}
	done := make(chan result, 1)
	go func() {
		next, _, err := screen.Submit(ctx)
		done <- result{next, err}
	}()
	<-started
	screen.Dispose()
	close(release)

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit() did not return")
	}
	if res.err != nil || res.next != ScreenCreateTask {
		t.Fatalf("Submit() after Dispose = %s, %v, want %s", res.next, res.err, ScreenCreateTask)
	}
	if screen.Form().Title != "Fix pothole" {
		t.Fatalf("disposed screen cleared its form")
	}
	if state, _, _ := screen.Picker().Selection(); state != "st-mh" {
		t.Fatalf("disposed screen cleared its picker")
	}
}

func TestDisposedEditStaysPut(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{update: func(_ context.Context, id entities.ID, in ports.TaskInput) (*entities.Task, error) {
		close(started)
		<-release
		return &entities.Task{ID: id, Title: in.Title}, nil
	}}
	original := entities.Task{
		ID:       "t1",
		Title:    "Old title",
		State:    entities.LocationRef{ID: "st-mh"},
		District: entities.LocationRef{ID: "ds-pune"},
		City:     entities.LocationRef{ID: "ct-baner"},
	}
	screen := NewEditTaskScreen(api, loggedInStore(t), nil, original)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	screen.SetTitle("New title")

	type result struct {
		next Screen
		err  error
	}
	done := make(chan result, 1)
	go func() {
		next, _, err := screen.Submit(ctx)
		done <- result{next, err}
	}()
	<-started
	screen.Dispose()
	close(release)

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit() did not return")
	}
	if res.err != nil || res.next != ScreenEditTask {
		t.Fatalf("Submit() after Dispose = %s, %v, want %s", res.next, res.err, ScreenEditTask)
	}
	if got := screen.Task().Title; got != "Old title" {
		t.Fatalf("disposed screen applied the update: %q", got)
	}
}

func TestDisposedPickerDropsLateOptions(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{districts: func(_ context.Context, id entities.ID) ([]entities.LocationNode, error) {
		close(started)
		<-release
		return seedNodes(entities.LevelDistrict, id), nil
	}}
	screen := NewCreateTaskScreen(api, loggedInStore(t), nil)
	if err := screen.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- screen.Picker().Select(ctx, entities.LevelState, "st-mh") }()
	<-started
	screen.Dispose()
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Select() failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Select() did not return")
	}
	if got := screen.Picker().Options(entities.LevelDistrict); len(got) != 0 {
		t.Fatalf("disposed screen got district options: %v", got)
	}
}
