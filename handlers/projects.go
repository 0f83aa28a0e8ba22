package handlers

import (
	"context"
	"net/http"

	"taskboard/store"
	"taskboard/uploads"
)

type ProjectHandler struct {
	projects *store.Projects
	uploads  *uploads.Gateway
}

func NewProjectHandler(projects *store.Projects, gateway *uploads.Gateway) *ProjectHandler {
	return &ProjectHandler{projects: projects, uploads: gateway}
}

func (h *ProjectHandler) List(ctx context.Context, req *Request) (int, any, error) {
	projects, err := h.projects.List(ctx, req.User.ID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, projects, nil
}

func (h *ProjectHandler) Get(ctx context.Context, req *Request) (int, any, error) {
	project, err := h.projects.Get(ctx, req.User.ID, req.Params["id"])
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, project, nil
}

func (h *ProjectHandler) Create(ctx context.Context, req *Request) (int, any, error) {
	var in store.ProjectInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	project, err := h.projects.Create(ctx, req.User.ID, in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, project, nil
}

func (h *ProjectHandler) Update(ctx context.Context, req *Request) (int, any, error) {
	var in store.ProjectInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	project, err := h.projects.Update(ctx, req.User.ID, req.Params["id"], in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, project, nil
}

func (h *ProjectHandler) Delete(ctx context.Context, req *Request) (int, any, error) {
	if err := h.projects.Delete(ctx, req.User.ID, req.Params["id"]); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, success, nil
}

// UploadImage stores the "image" file and makes it the project image.
func (h *ProjectHandler) UploadImage(ctx context.Context, req *Request) (int, any, error) {
	// Ownership is checked before anything is written to disk.
	if _, err := h.projects.Get(ctx, req.User.ID, req.Params["id"]); err != nil {
		return 0, nil, err
	}

	file, release, err := req.File("image")
	if err != nil {
		return 0, nil, err
	}
	defer release()

	path, err := h.uploads.Save("projects", file)
	if err != nil {
		return 0, nil, err
	}
	project, err := h.projects.AttachImage(ctx, req.User.ID, req.Params["id"], path)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, project, nil
}

var success = map[string]bool{"success": true}
