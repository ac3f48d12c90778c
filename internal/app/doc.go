// Package app wires a tickgrid run together: it loads and resolves the
// manifests, builds the callback registry, entity world and frame loop, and
// plays the declared scenes. It does not know about the command line.
package app
