package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/abdesslem/cds/internal/api/cds"
)

// App carries what every command needs.
type App struct {
	Client  *cds.Client
	Project string // default for --project
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Context context.Context
}

// commonFlags are shared by every leaf command.
type commonFlags struct {
	project string
	yaml    bool
}

func (a *App) flagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&common.project, "project", "p", a.Project, "project key")
	fs.BoolVar(&common.yaml, "yaml", false, "print YAML instead of JSON")
	return fs
}

func (c commonFlags) key() (string, error) {
	if c.project == "" {
		return "", fmt.Errorf("project key is required (--project or api.project)")
	}
	return c.project, nil
}

func (a *App) ctx() context.Context {
	if a.Context != nil {
		return a.Context
	}
	return context.Background()
}

// print writes v as indented JSON, or YAML when asked.
func (a *App) print(v any, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(a.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSource returns the raw contents of path; "-" reads stdin.
func (a *App) readSource(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	if path == "-" {
		return io.ReadAll(a.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// readBody decodes a request body from path. .yaml and .yml files are YAML;
// anything else is JSON with comments and trailing commas allowed.
func (a *App) readBody(path string, v any) error {
	data, err := a.readSource(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return id, nil
}

// leaf builds a runnable command with the common flags plus whatever extra
// registers. run receives the resolved project key.
func (a *App) leaf(name, summary, usage string, extra func(*pflag.FlagSet), run func(key string, asYAML bool, args []string) error) *Command {
	var common commonFlags
	return &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Flags: func() *pflag.FlagSet {
			fs := a.flagSet(name, &common)
			if extra != nil {
				extra(fs)
			}
			return fs
		},
		Run: func(args []string) error {
			key, err := common.key()
			if err != nil {
				return err
			}
			return run(key, common.yaml, args)
		},
	}
}
