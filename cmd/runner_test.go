package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sagyam/linite-sub002/internal/seed"
	"github.com/Sagyam/linite-sub002/internal/shared"
	tu "github.com/Sagyam/linite-sub002/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "config.toml" {
				t.Error("expected configPath to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

// seededRunner builds a runner over a migrated, seeded temp database.
func seededRunner(t *testing.T, output *bytes.Buffer) *Runner {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "linite.db")

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	catalog, err := seed.Parse(seed.DefaultCatalog())
	if err != nil {
		t.Fatalf("failed to parse embedded catalog: %v", err)
	}
	if _, err := seed.NewLoader(db, shared.NewLogger(output)).Load(catalog); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	return NewRunner(RunnerOpts{Config: config, Output: output})
}

func runCLI(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "linite",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"linite"}, args...))
}

func TestPlanCommands(t *testing.T) {
	t.Run("install emits JSON plan", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "install", "--distro", "ubuntu", "--format", "json", "firefox", "steam")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"commands"`) {
			t.Errorf("expected commands field, got %s", result)
		}
		if !strings.Contains(result, `"breakdown"`) {
			t.Errorf("expected breakdown field, got %s", result)
		}
	})

	t.Run("install renders text plan", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "install", "--distro", "ubuntu", "firefox")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "firefox") {
			t.Errorf("expected resolved package in output, got %s", output.String())
		}
	})

	t.Run("install writes script file", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)
		path := filepath.Join(t.TempDir(), "plan.sh")

		err := runCLI(t, runner, "install", "--distro", "ubuntu", "--format", "script", "--output", path, "firefox")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		script := tu.MustReadFile(t, path)
		if !strings.HasPrefix(script, "#!/usr/bin/env bash") {
			t.Error("expected shebang in script file")
		}
	})

	t.Run("install without apps fails", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "install", "--distro", "ubuntu")
		if err == nil {
			t.Fatal("expected error without application slugs")
		}
	})

	t.Run("install with unknown format fails", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "install", "--distro", "ubuntu", "--format", "yaml", "firefox")
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
		if !strings.Contains(err.Error(), "unknown format") {
			t.Errorf("expected format error, got %v", err)
		}
	})

	t.Run("install with unknown distro fails", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "install", "--distro", "temple-os", "firefox")
		if err == nil {
			t.Fatal("expected error for unknown distribution")
		}
	})

	t.Run("uninstall with cleanup stages", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "uninstall", "--distro", "ubuntu", "--cleanup", "--autoremove", "--format", "json", "firefox")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `"dependencyCleanupCommands"`) {
			t.Errorf("expected dependency cleanup field, got %s", result)
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("sources lists seeded sources", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "catalog", "sources")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, slug := range []string{"apt", "flatpak", "nix"} {
			if !strings.Contains(result, slug) {
				t.Errorf("expected %s in output, got %s", slug, result)
			}
		}
	})

	t.Run("distros marks default sources", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "catalog", "distros")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "ubuntu") {
			t.Errorf("expected ubuntu in output, got %s", result)
		}
		if !strings.Contains(result, "apt*") {
			t.Errorf("expected default marker on apt, got %s", result)
		}
	})

	t.Run("apps output as JSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "catalog", "apps", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `"slug": "firefox"`) {
			t.Errorf("expected firefox entry, got %s", output.String())
		}
	})
}

func TestSeedCommand(t *testing.T) {
	t.Run("seeding twice is idempotent", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "seed")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "0 created") {
			t.Errorf("expected updates only on reseed, got %s", result)
		}
	})

	t.Run("missing file surfaces error", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := seededRunner(t, output)

		err := runCLI(t, runner, "seed", "--file", filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("expected error for missing catalog file")
		}
		if !strings.Contains(err.Error(), "failed to read catalog file") {
			t.Errorf("expected read error, got %v", err)
		}
	})
}
