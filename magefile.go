//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build builds Jogo for Linux with Green Tea GC
func Build() error {
	fmt.Println("Building Jogo for Linux with Go 1.25 + Green Tea GC...")
	env := map[string]string{
		"GOOS":         "linux",
		"GOARCH":       "amd64",
		"GOEXPERIMENT": "greenteagc",
	}
	return sh.RunWith(env, "go", "build", "-o", "jogo-linux-amd64", "./cmd/jogo")
}

// BuildDocker builds the container variant (trusted proxy headers, no self-upgrade)
func BuildDocker() error {
	fmt.Println("Building Jogo for Docker...")
	env := map[string]string{
		"GOOS":        "linux",
		"GOARCH":      "amd64",
		"CGO_ENABLED": "0",
	}
	return sh.RunWith(env, "go", "build", "-tags", "docker", "-o", "jogo-docker", "./cmd/jogo")
}

// BuildLocal builds Jogo for current platform
func BuildLocal() error {
	fmt.Printf("Building Jogo for %s/%s...\n", runtime.GOOS, runtime.GOARCH)
	return sh.Run("go", "build", "-o", "jogo", "./cmd/jogo")
}

// Test runs tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestDocker runs tests with the docker build tag
func TestDocker() error {
	fmt.Println("Running tests (docker tag)...")
	return sh.Run("go", "test", "-tags", "docker", "./...")
}

// TestIntegration runs the PostgreSQL-backed tests (needs DATABASE_URL)
func TestIntegration() error {
	if os.Getenv("DATABASE_URL") == "" {
		return errors.New("DATABASE_URL is not set (point it at a disposable postgres server)")
	}
	fmt.Println("Running integration tests...")
	return sh.Run("go", "test", "-tags", "integration", "./internal/store/postgres/...")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	_ = os.Remove("jogo")
	_ = os.Remove("jogo-linux-amd64")
	_ = os.Remove("jogo-docker")
	return nil
}

// Deploy builds and deploys to the host named by JOGO_DEPLOY_HOST
func Deploy() error {
	server := os.Getenv("JOGO_DEPLOY_HOST")
	if server == "" {
		return errors.New("JOGO_DEPLOY_HOST is not set (e.g. root@example.com)")
	}
	if err := Build(); err != nil {
		return err
	}

	fmt.Println("Deploying to production...")

	// Upload binary
	if err := sh.Run("scp", "jogo-linux-amd64", server+":/usr/local/bin/jogo-new"); err != nil {
		return err
	}

	// Restart service; migrations run on start
	cmd := "systemctl stop jogo && mv /usr/local/bin/jogo /usr/local/bin/jogo-old && mv /usr/local/bin/jogo-new /usr/local/bin/jogo && chmod +x /usr/local/bin/jogo && systemctl start jogo"
	if err := sh.Run("ssh", server, cmd); err != nil {
		return err
	}

	fmt.Println("Deployment complete!")
	return sh.Run("ssh", server, "systemctl status jogo")
}

// Update upgrades all Go dependencies
func Update() error {
	fmt.Println("Updating dependencies...")
	if err := sh.Run("go", "get", "-u", "./..."); err != nil {
		return err
	}
	return sh.Run("go", "mod", "tidy")
}

// Fmt runs gofmt on all Go files
func Fmt() error {
	fmt.Println("Formatting code...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet on all Go files
func Vet() error {
	fmt.Println("Vetting code...")
	return sh.Run("go", "vet", "./...")
}

// Bench runs benchmarks
func Bench() error {
	fmt.Println("Running benchmarks...")
	return sh.Run("go", "test", "-bench=.", "./...")
}

// Deps downloads dependencies
func Deps() error {
	fmt.Println("Downloading dependencies...")
	return sh.Run("go", "mod", "download")
}

// Tidy tidies go.mod
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// CI runs all checks for continuous integration
func CI() error {
	mg.SerialDeps(Deps, Fmt, Vet, Test, TestDocker)
	fmt.Println("All CI checks passed!")
	return nil
}
