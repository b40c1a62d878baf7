//go:build mage

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the demo binary into bin/prism.
func (Build) Demo() error {
	if _, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "prism"), "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Validates every GLSL stage under assets/shaders with glslangValidator, when installed.
func (Build) Shaders() error {
	if _, err := exec.LookPath("glslangValidator"); err != nil {
		fmt.Println("glslangValidator not found, skipping shader validation")
		return nil
	}
	stages, err := shaderStages()
	if err != nil {
		return err
	}
	for _, stage := range stages {
		if _, err := executeCmd("glslangValidator", withArgs(stage)); err != nil {
			return err
		}
	}
	return nil
}
