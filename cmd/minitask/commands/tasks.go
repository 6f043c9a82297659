package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minitask/client/internal/application/flows"
	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

func newTasksCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Create, list, edit and delete tasks",
	}
	cmd.AddCommand(
		newTasksListCommand(opts),
		newTasksCreateCommand(opts),
		newTasksEditCommand(opts),
		newTasksDeleteCommand(opts),
	)
	return cmd
}

func newTasksListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			list := flows.NewTaskListScreen(app.api, app.log)
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			renderTasks(app, list.Tasks())
			return nil
		},
	}
}

func renderTasks(app *clientApp, tasks []entities.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(app.out, flows.MsgNoTasks)
		return
	}

	w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSTATE\tDISTRICT\tCITY\tIMAGE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, statusLabel(t.Status),
			t.State.Label(), t.District.Label(), t.City.Label(),
			app.api.ImageURL(t.Image),
		)
	}
	w.Flush()
}

func statusLabel(s entities.TaskStatus) string {
	if s == "" {
		return "-"
	}
	return string(s)
}

// taskFlags are the form fields shared by create and edit.
type taskFlags struct {
	title       string
	description string
	image       string
	status      string
	state       string
	district    string
	city        string
}

func (f *taskFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.image, "image", "", "path of a JPEG to attach")
	cmd.Flags().StringVar(&f.state, "state", "", "state id (see `minitask locations`)")
	cmd.Flags().StringVar(&f.district, "district", "", "district id")
	cmd.Flags().StringVar(&f.city, "city", "", "city id")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "pending, in-progress or completed")
	}
}

// selectLocations walks the picker from the first changed level down. Each
// level's options come from the server after its parent is picked.
func (f *taskFlags) selectLocations(ctx context.Context, cmd *cobra.Command, p *flows.LocationPicker) error {
	steps := []struct {
		flag  string
		level entities.LocationLevel
		id    string
	}{
		{"state", entities.LevelState, f.state},
		{"district", entities.LevelDistrict, f.district},
		{"city", entities.LevelCity, f.city},
	}

	changed := false
	for _, step := range steps {
		if !cmd.Flags().Changed(step.flag) {
			if changed {
				// a parent changed, so this level was reset
				return nil
			}
			continue
		}
		changed = true
		if err := p.Select(ctx, step.level, entities.ID(step.id)); err != nil {
			return usagef("%s %q is not available here; run `minitask locations` to list options", step.flag, step.id)
		}
	}
	return nil
}

func newTasksCreateCommand(opts *rootOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.requireSession(ctx); err != nil {
				return err
			}

			screen := flows.NewCreateTaskScreen(app.api, app.sessions, app.log)
			defer screen.Dispose()
			if err := screen.Open(ctx); err != nil {
				return err
			}

			screen.SetTitle(flags.title)
			screen.SetDescription(flags.description)
			if flags.image != "" {
				screen.AttachImage(&ports.Image{Path: flags.image})
			}
			if err := flags.selectLocations(ctx, cmd, screen.Picker()); err != nil {
				return err
			}

			_, task, err := screen.Submit(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Task created: %s\n", task.ID)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

func newTasksEditCommand(opts *rootOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.requireSession(ctx); err != nil {
				return err
			}

			task, err := findTask(ctx, app, entities.ID(args[0]))
			if err != nil {
				return err
			}

			screen := flows.NewEditTaskScreen(app.api, app.sessions, app.log, *task)
			defer screen.Dispose()
			if err := screen.Open(ctx); err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				screen.SetTitle(flags.title)
			}
			if cmd.Flags().Changed("description") {
				screen.SetDescription(flags.description)
			}
			if cmd.Flags().Changed("status") {
				screen.SetStatus(entities.TaskStatus(flags.status))
			}
			if flags.image != "" {
				screen.AttachImage(&ports.Image{Path: flags.image})
			}
			if err := flags.selectLocations(ctx, cmd, screen.Picker()); err != nil {
				return err
			}

			_, updated, err := screen.Submit(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out, "Task updated: %s\n", updated.ID)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

func newTasksDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.requireSession(ctx); err != nil {
				return err
			}

			list := flows.NewTaskListScreen(app.api, app.log)
			confirm := app.confirm
			if yes {
				confirm = nil
			}

			deleted, err := list.Delete(ctx, entities.ID(args[0]), confirm)
			if err != nil {
				fmt.Fprintln(app.out, "Failed to delete task")
				return err
			}
			if !deleted {
				fmt.Fprintln(app.out, "Cancelled")
				return nil
			}

			fmt.Fprintln(app.out, "Task deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func findTask(ctx context.Context, app *clientApp, id entities.ID) (*entities.Task, error) {
	list := flows.NewTaskListScreen(app.api, app.log)
	if err := list.Load(ctx); err != nil {
		return nil, err
	}
	for _, t := range list.Tasks() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, usagef("task %s not found", id)
}
