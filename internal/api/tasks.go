package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"taskdeck-cli/internal/model"
)

// TaskPage is the response of a task collection fetch: the page contents
// plus the server-derived pagination metadata.
type TaskPage struct {
	Tasks      []model.Task     `json:"tasks"`
	Pagination model.Pagination `json:"pagination"`
}

func (c *Client) ListTasks(ctx context.Context, query url.Values) (TaskPage, error) {
	var out TaskPage
	if err := c.getJSON(ctx, "/tasks", query, &out); err != nil {
		return TaskPage{}, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	if err := c.getJSON(ctx, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// TaskFields are the metadata fields of a multipart create request.
type TaskFields struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	DueDate     string
	AssignedTo  string
}

// Upload is one file part of a multipart create request. All parts are
// sent under the "documents" field name.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type createTaskResponse struct {
	TaskID string `json:"task_id"`
}

// CreateTask issues the multipart create call and returns the new task id.
// Admission rules (count, type) are the mutation pipeline's job; by the
// time a request reaches here it is assumed admissible.
func (c *Client) CreateTask(ctx context.Context, fields TaskFields, docs []Upload) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeTaskForm(mw, fields, docs)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	var out createTaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, pr, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.TaskID, nil
}

func writeTaskForm(mw *multipart.Writer, fields TaskFields, docs []Upload) error {
	form := map[string]string{
		"title":       fields.Title,
		"description": fields.Description,
		"status":      string(fields.Status),
		"priority":    string(fields.Priority),
		"due_date":    fields.DueDate,
		"assigned_to": fields.AssignedTo,
	}
	for k, v := range form {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, d := range docs {
		part, err := mw.CreateFormFile("documents", d.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, d.Reader); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTask sends a metadata-only update. Attachments are immutable after
// creation and never appear in this call.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	return c.putJSON(ctx, "/tasks/"+url.PathEscape(id), patch, nil)
}

// DeleteTask deletes the task and, server-side, its attached documents.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.deleteCall(ctx, "/tasks/"+url.PathEscape(id))
}

// DownloadDocument streams one attached document into w and returns the
// number of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, taskID, storedName string, w io.Writer) (int64, error) {
	path := "/tasks/" + url.PathEscape(taskID) + "/documents/" + url.PathEscape(storedName)

	req, err := c.newRawRequest(ctx, path)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, &Error{Kind: ErrNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, responseError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Kind: ErrNetwork, Message: err.Error()}
	}
	return n, nil
}
