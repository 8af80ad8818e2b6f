package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/format"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/query"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksDownloadCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var status string
	var priority string
	var sortKey string
	var dueBefore string
	var page int
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with filtering, sorting and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}

			st := query.DefaultState()
			if status != "" {
				if !model.ValidStatus(model.Status(status)) {
					return writeErr(cmd, fmt.Errorf("invalid status %q", status))
				}
				st.Status = model.Status(status)
			}
			if priority != "" {
				if !model.ValidPriority(model.Priority(priority)) {
					return writeErr(cmd, fmt.Errorf("invalid priority %q", priority))
				}
				st.Priority = model.Priority(priority)
			}
			if sortKey != "" {
				st.Sort = sortKey
			}
			st.DueBefore = dueBefore
			st.Page = page
			st.Limit = limit

			if err := d.ctrl.Set(cmd.Context(), st); err != nil {
				return writeErr(cmd, err)
			}

			tasks, pg, fetchErr := d.db.Tasks()
			if fetchErr != "" {
				return writeErr(cmd, fmt.Errorf("%s", fetchErr))
			}
			if app.Format == "table" {
				fmt.Fprint(cmd.OutOrStdout(), format.RenderTasks(tasks, pg))
				return nil
			}
			return writeOut(cmd, app, api.TaskPage{Tasks: tasks, Pagination: pg})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", `Filter by status ("To Do"|"In Progress"|"Completed")`)
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (Low|Medium|High)")
	cmd.Flags().StringVar(&sortKey, "sort", query.SortDueDateDesc, "Sort key (-due_date|due_date|-priority|status)")
	cmd.Flags().StringVar(&dueBefore, "due-before", "", "Only tasks due on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Page size")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}
			task, err := d.gw.GetTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, task)
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title string
	var description string
	var status string
	var priority string
	var dueDate string
	var assignedTo string
	var docPaths []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task (up to 3 PDF documents)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}

			uploads := make([]api.Upload, 0, len(docPaths))
			var opened []*os.File
			defer func() {
				for _, f := range opened {
					_ = f.Close()
				}
			}()
			for _, p := range docPaths {
				f, err := os.Open(p)
				if err != nil {
					return writeErr(cmd, err)
				}
				opened = append(opened, f)
				name := filepath.Base(p)
				uploads = append(uploads, api.Upload{
					Filename:    name,
					ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
					Reader:      f,
				})
			}

			fields := api.TaskFields{
				Title:       title,
				Description: description,
				Status:      model.Status(status),
				Priority:    model.Priority(priority),
				DueDate:     dueDate,
				AssignedTo:  assignedTo,
			}
			id, err := d.pipe.CreateTask(cmd.Context(), fields, uploads)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"task_id": id})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", string(model.StatusToDo), "Initial status")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityLow), "Priority")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "Due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "Assignee user id (default: yourself)")
	cmd.Flags().StringArrayVar(&docPaths, "doc", nil, "PDF document to attach (repeatable, max 3)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title string
	var description string
	var status string
	var priority string
	var dueDate string
	var assignedTo string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task metadata (attachments are immutable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}

			patch := model.TaskPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("status") {
				s := model.Status(status)
				if !model.ValidStatus(s) {
					return writeErr(cmd, fmt.Errorf("invalid status %q", status))
				}
				patch.Status = &s
			}
			if cmd.Flags().Changed("priority") {
				p := model.Priority(priority)
				if !model.ValidPriority(p) {
					return writeErr(cmd, fmt.Errorf("invalid priority %q", priority))
				}
				patch.Priority = &p
			}
			if cmd.Flags().Changed("due-date") {
				patch.DueDate = &dueDate
			}
			if cmd.Flags().Changed("assigned-to") {
				patch.AssignedTo = &assignedTo
			}

			if err := d.pipe.UpdateTask(cmd.Context(), args[0], patch); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"status": "updated"})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "New assignee user id")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its attached documents (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirmRequired)
			}
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}
			if err := d.pipe.DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"status": "deleted"})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func newTasksDownloadCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download <task-id> <stored-name>",
		Short: "Download an attached document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := guard(d.sessions.Current(), ""); err != nil {
				return writeErr(cmd, err)
			}
			taskID, storedName := args[0], args[1]

			dest := strings.TrimSpace(outPath)
			if dest == "" {
				// Default to the user-facing filename from the task record.
				task, err := d.gw.GetTask(cmd.Context(), taskID)
				if err != nil {
					return writeErr(cmd, err)
				}
				for _, doc := range task.AttachedDocuments {
					if doc.StoredName == storedName {
						dest = doc.OriginalName
						break
					}
				}
				if dest == "" {
					dest = storedName
				}
			}

			f, err := os.Create(dest)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := d.gw.DownloadDocument(cmd.Context(), taskID, storedName, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(dest)
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"path": dest, "bytes": n})
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output path (default: the document's original filename)")
	return cmd
}
