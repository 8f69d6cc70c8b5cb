package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	recal "github.com/next-exp/pmtrecal_go/pkg"
)

// needsToken reports whether a token must be requested. Grid jobs,
// including block jobs selected with an index, get theirs from the job wrapper.
func needsToken(config recal.Configuration) bool {
	return !config.Grid && config.Index < 0
}

// getToken runs the credential helper needed to read files from grid
// storage when running interactively.
func getToken(command []string) error {
	if len(command) == 0 {
		return errors.New("no token command configured")
	}
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("error running %q: %w", command[0], err)
	}
	return nil
}
