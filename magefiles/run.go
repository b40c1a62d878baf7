//go:build mage

package main

import (
	"fmt"
	"strconv"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

type Test mg.Namespace

// Validates the shaders, then runs the demo in a window.
func (Run) Demo() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "prism.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the demo against the recording device for the given number of frames.
func (Run) Headless(frames int) error {
	fmt.Println("Run headless demo...")
	if _, err := executeCmd("go", withArgs("run", ".", "-headless", "-frames", strconv.Itoa(frames)), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs every test in the module.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
