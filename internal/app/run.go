package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/manifest"
)

// defaultScene is played when the manifests declare no scenes.
const defaultScene = "main"

// Run spawns the global entities and plays every scene in order. Between
// scenes the world is reset, so only entities with a persistent callback
// carry over. Cancelling ctx ends the current scene and Run returns nil.
// The world is shut down before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}
	defer a.world.Shutdown()

	a.logger.Info("Callback handlers registered.", "count", a.handlers.Len(), "names", a.handlers.Names())
	manifest.Spawn(a.world, a.model.Entities)

	scenes := a.model.Scenes
	if len(scenes) == 0 {
		scenes = []*config.Scene{{Name: defaultScene}}
	}

	for i, scene := range scenes {
		if i > 0 {
			a.world.ResetScene()
		}
		manifest.Spawn(a.world, scene.Entities)

		frames := scene.Frames
		if frames == 0 {
			frames = a.config.Frames
		}
		sceneCtx := ctxlog.With(ctx, "scene", scene.Name)
		logger := ctxlog.FromContext(sceneCtx)
		logger.Info("Scene started.", "frames", frames, "entities", a.world.Len())

		err := a.loop.Run(sceneCtx, frames)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("Scene interrupted.", "reason", err)
			break
		}
		if err != nil {
			return fmt.Errorf("scene %q failed: %w", scene.Name, err)
		}
		logger.Info("Scene finished.", "frames_total", a.loop.Stats().Frames)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
