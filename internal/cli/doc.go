// Package cli turns command-line flags, TICKGRID_* environment variables and
// an optional config file into an app.Config.
package cli
