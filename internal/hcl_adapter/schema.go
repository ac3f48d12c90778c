package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Behaviours []*behaviourBlock `hcl:"behaviour,block"`
	Entities   []*entityBlock    `hcl:"entity,block"`
	Scenes     []*sceneBlock     `hcl:"scene,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// behaviourBlock is a `behaviour "<kind>"` block.
type behaviourBlock struct {
	Kind        string            `hcl:"kind,label"`
	Description string            `hcl:"description,optional"`
	Attributes  []*attributeBlock `hcl:"attribute,block"`
	Callbacks   []*callbackBlock  `hcl:"callback,block"`
	DefRange    hcl.Range         `hcl:",def_range"`
}

// attributeBlock declares one typed entity attribute of a behaviour.
type attributeBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	DefRange    hcl.Range      `hcl:",def_range"`
}

// callbackBlock is a `callback "<phase>"` block inside a behaviour.
type callbackBlock struct {
	Phase      string    `hcl:"phase,label"`
	Handler    string    `hcl:"handler"`
	Order      int       `hcl:"order,optional"`
	Persistent bool      `hcl:"persistent,optional"`
	Public     bool      `hcl:"public,optional"`
	DefRange   hcl.Range `hcl:",def_range"`
}

// entityBlock is an `entity "<kind>" "<name>"` block.
type entityBlock struct {
	Kind       string         `hcl:"kind,label"`
	Name       string         `hcl:"name,label"`
	Attributes hcl.Expression `hcl:"attributes,optional"`
	DefRange   hcl.Range      `hcl:",def_range"`
}

// sceneBlock is a `scene "<name>"` block grouping the entities it spawns.
type sceneBlock struct {
	Name     string         `hcl:"name,label"`
	Frames   int            `hcl:"frames,optional"`
	Entities []*entityBlock `hcl:"entity,block"`
	DefRange hcl.Range      `hcl:",def_range"`
}
