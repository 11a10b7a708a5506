//go:build mage

// Package main contains Mage build targets for file-to-text.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "file-to-text"
	modPath = "main"
)

// Default target to run when none is specified
var Default = Build

// ldflags injects version information into main
func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.Version=%s", modPath, version),
		fmt.Sprintf("-X %s.GitCommit=%s", modPath, strings.TrimSpace(commit)),
		fmt.Sprintf("-X %s.BuildTime=%s", modPath, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.BuildBy=%s", modPath, user),
	}
	return strings.Join(flags, " ")
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, "."); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Check runs vet and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Serve builds the binary and starts the web UI.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
