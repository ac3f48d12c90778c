// Package config defines the format-agnostic manifest model for the
// application and the Loader interface that produces it.
//
// A manifest declares behaviours (which named Go handlers an entity kind
// contributes to each phase), the global entities spawned at startup and the
// scenes played in order. Concrete loaders, such as the HCL one, live in
// separate packages.
package config
