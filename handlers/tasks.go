package handlers

import (
	"context"
	"net/http"

	"taskboard/store"
	"taskboard/uploads"
)

type TaskHandler struct {
	tasks   *store.Tasks
	uploads *uploads.Gateway
}

func NewTaskHandler(tasks *store.Tasks, gateway *uploads.Gateway) *TaskHandler {
	return &TaskHandler{tasks: tasks, uploads: gateway}
}

func (h *TaskHandler) Create(ctx context.Context, req *Request) (int, any, error) {
	var in store.TaskInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	task, err := h.tasks.Create(ctx, req.User.ID, in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, task, nil
}

func (h *TaskHandler) Get(ctx context.Context, req *Request) (int, any, error) {
	return wrapTask(h.tasks.Get(ctx, req.Params["id"], req.User.ID))
}

func (h *TaskHandler) Update(ctx context.Context, req *Request) (int, any, error) {
	var in store.TaskInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	return wrapTask(h.tasks.Update(ctx, req.User.ID, req.Params["id"], in))
}

func (h *TaskHandler) Delete(ctx context.Context, req *Request) (int, any, error) {
	if err := h.tasks.Delete(ctx, req.User.ID, req.Params["id"]); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, success, nil
}

func (h *TaskHandler) AddTag(ctx context.Context, req *Request) (int, any, error) {
	var in store.TagInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	return wrapTask(h.tasks.AddTag(ctx, req.User.ID, req.Params["id"], in))
}

func (h *TaskHandler) DeleteTag(ctx context.Context, req *Request) (int, any, error) {
	return wrapTask(h.tasks.DeleteTag(ctx, req.User.ID, req.Params["id"], req.Params["tagId"]))
}

func (h *TaskHandler) AddLink(ctx context.Context, req *Request) (int, any, error) {
	var in store.LinkInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	return wrapTask(h.tasks.AddLink(ctx, req.User.ID, req.Params["id"], in))
}

func (h *TaskHandler) DeleteLink(ctx context.Context, req *Request) (int, any, error) {
	return wrapTask(h.tasks.DeleteLink(ctx, req.User.ID, req.Params["id"], req.Params["linkId"]))
}

// UploadImage stores the "image" file and attaches it to the task.
func (h *TaskHandler) UploadImage(ctx context.Context, req *Request) (int, any, error) {
	if _, err := h.tasks.Get(ctx, req.Params["id"], req.User.ID); err != nil {
		return 0, nil, err
	}

	file, release, err := req.File("image")
	if err != nil {
		return 0, nil, err
	}
	defer release()

	path, err := h.uploads.Save("tasks", file)
	if err != nil {
		return 0, nil, err
	}
	return wrapTask(h.tasks.AddImage(ctx, req.User.ID, req.Params["id"], path))
}

func (h *TaskHandler) DeleteImage(ctx context.Context, req *Request) (int, any, error) {
	return wrapTask(h.tasks.DeleteImage(ctx, req.User.ID, req.Params["id"], req.Params["imageId"]))
}

func wrapTask(task any, err error) (int, any, error) {
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, task, nil
}
