// Package views is the client's fixed set of screens and the router that
// moves between them.
package views

import (
	"context"
	"strings"
	"sync"

	"github.com/terra-dev/terra/internal/cli/gate"
)

// Name identifies a view
type Name = gate.ViewName

const (
	LoginPage     Name = gate.LoginView
	ProjectList   Name = "ProjectList"
	FactionViewer Name = "FactionViewer"
	Leaderboard   Name = "Leaderboard"
	NotFound      Name = "NotFound"
)

// Route binds a path to a view
type Route struct {
	Path string
	Name Name
}

// Routes is the route table. Any other path resolves to NotFound.
var Routes = []Route{
	{Path: "/", Name: LoginPage},
	{Path: "/projects", Name: ProjectList},
	{Path: "/faction", Name: FactionViewer},
	{Path: "/leaderboard", Name: Leaderboard},
}

// Resolve maps a path to its view
func Resolve(path string) Name {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	for _, route := range Routes {
		if route.Path == path {
			return route.Name
		}
	}
	return NotFound
}

// PathOf returns the path of a routed view
func PathOf(name Name) (string, bool) {
	for _, route := range Routes {
		if route.Name == name {
			return route.Path, true
		}
	}
	return "", false
}

func known(name Name) bool {
	if name == NotFound {
		return true
	}
	_, ok := PathOf(name)
	return ok
}

// Renderer draws a view. It may navigate elsewhere through the router.
type Renderer func(ctx context.Context, r *Router) error

// Router tracks the current view and renders views as they are entered
type Router struct {
	mu        sync.RWMutex
	current   Name
	renderers map[Name]Renderer
}

// NewRouter creates a router with no current view
func NewRouter() *Router {
	return &Router{
		renderers: make(map[Name]Renderer),
	}
}

// Register sets the renderer for a view
func (r *Router) Register(name Name, render Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = render
}

// Current returns the view most recently navigated to
func (r *Router) Current() Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate makes name the current view and renders it. Unknown names go to
// NotFound. The lock is not held while rendering, so renderers may navigate.
func (r *Router) Navigate(ctx context.Context, name Name) error {
	if !known(name) {
		name = NotFound
	}

	r.mu.Lock()
	r.current = name
	render := r.renderers[name]
	r.mu.Unlock()

	if render == nil {
		return nil
	}
	return render(ctx, r)
}

// Open navigates to the view routed at path
func (r *Router) Open(ctx context.Context, path string) error {
	return r.Navigate(ctx, Resolve(path))
}
