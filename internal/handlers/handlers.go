package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/entity"
)

// Handlers holds all the registered handlers
type Handlers struct {
	all map[string]*RegisteredHandler
}

// New creates and initializes a new Handlers instance.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]*RegisteredHandler),
	}
}

// BindContext is what a handler sees when it is bound to an entity.
type BindContext struct {
	Entity *entity.Entity
	Logger *slog.Logger
	Out    io.Writer
}

// Bind turns a handler into the procedure dispatched for one entity.
type Bind func(bc BindContext) binding.Procedure

// RegisteredHandler holds the compiled Go part of a manifest callback.
type RegisteredHandler struct {
	Description string
	Bind        Bind
}

// Module is implemented by packages that contribute handlers.
type Module interface {
	Register(h *Handlers)
}

// RegisterHandler registers a Go function under the name manifests refer to.
func (r *Handlers) RegisterHandler(name string, handler *RegisteredHandler) {
	if _, exists := r.all[name]; exists {
		panic(fmt.Sprintf("callback handler with name '%s' already registered", name))
	}
	if handler == nil || handler.Bind == nil {
		panic(fmt.Sprintf("callback handler '%s' has no bind function", name))
	}
	slog.Debug("Registering callback handler.", "name", name)
	r.all[name] = handler
}

// Get returns the handler registered under name.
func (r *Handlers) Get(name string) (*RegisteredHandler, bool) {
	h, ok := r.all[name]
	return h, ok
}

// Names returns every registered handler name in sorted order.
func (r *Handlers) Names() []string {
	return slices.Sorted(maps.Keys(r.all))
}

// Len returns the number of registered handlers.
func (r *Handlers) Len() int {
	return len(r.all)
}
