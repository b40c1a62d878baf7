/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/testbed"
)

const defaultHeadlessFrames = 300

func loadConfig(path string) (*engine.ApplicationConfig, error) {
	config, err := engine.LoadApplicationConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file %s not found, using defaults", path)
		return engine.DefaultApplicationConfig(), nil
	}
	return config, err
}

func main() {
	configPath := flag.String("config", "prism.toml", "path to the TOML configuration file")
	headless := flag.Bool("headless", false, "draw against the recording device instead of a window")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until quit)")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err.Error())
	}
	if *frames > 0 {
		config.Application.Frames = *frames
	}
	if *headless {
		config.Renderer.Backend = metadata.RendererBackendHeadless
		if config.Application.Frames == 0 {
			config.Application.Frames = defaultHeadlessFrames
		}
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the frame loop owns the device and the event system; a signal only
	// queues a quit request it picks up on its next frame
	go func() {
		<-sigCh
		e.RequestQuit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err.Error())
	}
	if runErr != nil {
		core.LogFatal("frame loop stopped: %s", runErr.Error())
	}
}
