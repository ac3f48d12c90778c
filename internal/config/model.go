package config

import (
	"github.com/specialistvlad/tickgrid/internal/phase"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of all loaded manifests.
type Model struct {
	Behaviours map[string]*Behaviour
	// Entities are spawned once at startup and live until they lose every
	// binding at a scene change, or until shutdown.
	Entities []*Entity
	// Scenes are played in declaration order.
	Scenes []*Scene
}

// NewModel returns an empty model ready to be merged into.
func NewModel() *Model {
	return &Model{Behaviours: make(map[string]*Behaviour)}
}

// Behaviour maps an entity kind to the callbacks every entity of that kind
// contributes.
type Behaviour struct {
	Kind        string
	Description string
	Callbacks   []*Callback
	// Attributes declares the typed attributes entities of this kind accept.
	// A behaviour without declarations accepts any attributes as written.
	Attributes map[string]*AttributeDefinition
	// FilePath is the manifest file the behaviour was declared in.
	FilePath string
}

// Callback binds a named Go handler to a phase.
type Callback struct {
	Phase      phase.Phase
	Handler    string
	Order      int
	Persistent bool
	// Public declares the handler callable from outside the dispatcher.
	Public bool
}

// AttributeDefinition declares one typed entity attribute.
type AttributeDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	// Default is applied when an entity omits the attribute. A nil Default
	// makes the attribute required.
	Default *cty.Value
}

// Entity is one instance to spawn.
type Entity struct {
	Kind       string
	Name       string
	Attributes map[string]cty.Value
	// FilePath is the manifest file the entity was declared in.
	FilePath string
}

// Scene is a named group of entities played for a number of frames.
// Frames of zero means the scene runs until the host stops.
type Scene struct {
	Name     string
	Frames   int
	Entities []*Entity
}
