package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"taskboard/middleware"
	"taskboard/store"
	"taskboard/uploads"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Credentials *store.Credentials
	Projects    *store.Projects
	Tasks       *store.Tasks
	Uploads     *uploads.Gateway
	Logger      *logrus.Logger

	// MaxBodySize caps request bodies; zero disables the cap.
	MaxBodySize int64
	// StaticDir, when set, serves files outside /api/ from this directory.
	StaticDir string
}

// Routes is the route table. Path params only match digits, so
// /api/projects/abc falls through to the not found handler.
func Routes(auth *AuthHandler, projects *ProjectHandler, tasks *TaskHandler) []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: "/api/auth/register", Public: true, Handle: auth.Register},
		{Method: http.MethodPost, Pattern: "/api/auth/login", Public: true, Handle: auth.Login},
		{Method: http.MethodGet, Pattern: "/api/auth/me", Handle: auth.Me},

		{Method: http.MethodGet, Pattern: "/api/projects", Handle: projects.List},
		{Method: http.MethodPost, Pattern: "/api/projects", Handle: projects.Create},
		{Method: http.MethodGet, Pattern: "/api/projects/{id:[0-9]+}", Handle: projects.Get},
		{Method: http.MethodPut, Pattern: "/api/projects/{id:[0-9]+}", Handle: projects.Update},
		{Method: http.MethodDelete, Pattern: "/api/projects/{id:[0-9]+}", Handle: projects.Delete},
		{Method: http.MethodPost, Pattern: "/api/projects/{id:[0-9]+}/upload-image", Handle: projects.UploadImage},

		{Method: http.MethodPost, Pattern: "/api/tasks", Handle: tasks.Create},
		{Method: http.MethodGet, Pattern: "/api/tasks/{id:[0-9]+}", Handle: tasks.Get},
		{Method: http.MethodPut, Pattern: "/api/tasks/{id:[0-9]+}", Handle: tasks.Update},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id:[0-9]+}", Handle: tasks.Delete},
		{Method: http.MethodPost, Pattern: "/api/tasks/{id:[0-9]+}/add-tag", Handle: tasks.AddTag},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id:[0-9]+}/tag/{tagId:[0-9]+}", Handle: tasks.DeleteTag},
		{Method: http.MethodPost, Pattern: "/api/tasks/{id:[0-9]+}/add-link", Handle: tasks.AddLink},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id:[0-9]+}/link/{linkId:[0-9]+}", Handle: tasks.DeleteLink},
		{Method: http.MethodPost, Pattern: "/api/tasks/{id:[0-9]+}/upload-image", Handle: tasks.UploadImage},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id:[0-9]+}/image/{imageId:[0-9]+}", Handle: tasks.DeleteImage},
	}
}

// NewRouter builds the HTTP handler. The route table is resolved once here.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	writeError := ErrorWriter(opts.Logger)
	routes := Routes(
		NewAuthHandler(opts.Credentials),
		NewProjectHandler(opts.Projects, opts.Uploads),
		NewTaskHandler(opts.Tasks, opts.Uploads),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS)

	notFound := staticHandler(opts, writeError)
	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)

	// Public routes
	for _, rt := range routes {
		if rt.Public {
			router.Method(rt.Method, rt.Pattern, rt.serve(writeError, opts.MaxBodySize))
		}
	}

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(opts.Credentials, writeError))
		for _, rt := range routes {
			if !rt.Public {
				r.Method(rt.Method, rt.Pattern, rt.serve(writeError, opts.MaxBodySize))
			}
		}
	})

	router.Get("/uploads/{category}/{file}", uploadsHandler(opts.Uploads, notFound))

	return router
}

func uploadsHandler(gateway *uploads.Gateway, notFound http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := gateway.Dir(chi.URLParam(r, "category"))
		name := chi.URLParam(r, "file")
		if !ok || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			notFound(w, r)
			return
		}
		serveFile(w, r, filepath.Join(dir, name), notFound)
	}
}

// staticHandler serves files from StaticDir for paths outside /api/ and
// answers everything else with a JSON 404.
func staticHandler(opts Options, writeError func(http.ResponseWriter, *http.Request, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if opts.StaticDir != "" && r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/") {
			rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+r.URL.Path)), "/"))
			if rel != "" && rel != "." {
				serveFile(w, r, filepath.Join(opts.StaticDir, rel), func(w http.ResponseWriter, r *http.Request) {
					writeError(w, r, errNotFound())
				})
				return
			}
		}
		writeError(w, r, errNotFound())
	}
}

func serveFile(w http.ResponseWriter, r *http.Request, path string, notFound http.HandlerFunc) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		notFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
