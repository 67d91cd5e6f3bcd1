package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/abdesslem/cds/internal/api/cds"
	"github.com/abdesslem/cds/internal/domain"
)

func pipelineCommand(a *App) *Command {
	return &Command{
		Name:    "pipeline",
		Summary: "Manage pipelines",
		Subcommands: []*Command{
			a.leaf("list", "List the pipelines of a project", "cdsctl pipeline list [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 0, "cdsctl pipeline list"); err != nil {
						return err
					}
					pips, err := a.Client.ListPipelines(a.ctx(), key)
					if err != nil {
						return err
					}
					return a.print(pips, asYAML)
				}),
			a.leaf("show", "Show a pipeline with its usage", "cdsctl pipeline show <name> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline show <name>"); err != nil {
						return err
					}
					pip, err := a.Client.GetPipeline(a.ctx(), key, args[0])
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			pipelineCreateCommand(a),
			pipelineUpdateCommand(a),
			a.leaf("delete", "Delete a pipeline", "cdsctl pipeline delete <name> [flags]", nil,
				func(key string, _ bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline delete <name>"); err != nil {
						return err
					}
					if _, err := a.Client.DeletePipeline(a.ctx(), key, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(a.Stdout, "Pipeline %s deleted\n", args[0])
					return nil
				}),
			pipelineImportCommand(a),
			pipelinePreviewCommand(a),
			a.leaf("export", "Print the YAML definition of a pipeline", "cdsctl pipeline export <name> [flags]", nil,
				func(key string, _ bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline export <name>"); err != nil {
						return err
					}
					code, err := a.Client.ExportPipeline(a.ctx(), key, args[0])
					if err != nil {
						return err
					}
					_, err = fmt.Fprint(a.Stdout, code)
					return err
				}),
			a.leaf("pull", "Print the YAML definition of a pipeline with permissions", "cdsctl pipeline pull <name> [flags]", nil,
				func(key string, _ bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline pull <name>"); err != nil {
						return err
					}
					code, err := a.Client.PullPipeline(a.ctx(), key, args[0])
					if err != nil {
						return err
					}
					_, err = fmt.Fprint(a.Stdout, code)
					return err
				}),
			a.leaf("rollback", "Restore a pipeline to an audit revision", "cdsctl pipeline rollback <name> <audit-id> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 2, "cdsctl pipeline rollback <name> <audit-id>"); err != nil {
						return err
					}
					auditID, err := parseID("audit-id", args[1])
					if err != nil {
						return err
					}
					pip, err := a.Client.RollbackPipeline(a.ctx(), key, args[0], auditID)
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			a.leaf("audits", "List the revisions of a pipeline", "cdsctl pipeline audits <name> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline audits <name>"); err != nil {
						return err
					}
					audits, err := a.Client.ListAudits(a.ctx(), key, args[0])
					if err != nil {
						return err
					}
					return a.print(audits, asYAML)
				}),
			a.leaf("apps", "List the applications using a pipeline", "cdsctl pipeline apps <name> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 1, "cdsctl pipeline apps <name>"); err != nil {
						return err
					}
					apps, err := a.Client.ListApplications(a.ctx(), key, args[0])
					if err != nil {
						return err
					}
					return a.print(apps, asYAML)
				}),
		},
	}
}

func pipelineCreateCommand(a *App) *Command {
	var file string
	return a.leaf("create", "Create a pipeline from a JSON or YAML body", "cdsctl pipeline create --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "pipeline body (.json, .yaml, - for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 0, "cdsctl pipeline create --file <path>"); err != nil {
				return err
			}
			var pip domain.Pipeline
			if err := a.readBody(file, &pip); err != nil {
				return err
			}
			created, err := a.Client.CreatePipeline(a.ctx(), key, pip)
			if err != nil {
				return err
			}
			return a.print(created, asYAML)
		})
}

func pipelineUpdateCommand(a *App) *Command {
	var file string
	return a.leaf("update", "Replace a pipeline with a JSON or YAML body", "cdsctl pipeline update <name> --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "pipeline body (.json, .yaml, - for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 1, "cdsctl pipeline update <name> --file <path>"); err != nil {
				return err
			}
			var pip domain.Pipeline
			if err := a.readBody(file, &pip); err != nil {
				return err
			}
			if pip.Name == "" {
				pip.Name = args[0]
			}
			updated, err := a.Client.UpdatePipeline(a.ctx(), key, args[0], pip)
			if err != nil {
				return err
			}
			return a.print(updated, asYAML)
		})
}

func pipelineImportCommand(a *App) *Command {
	var (
		file  string
		force bool
	)
	return a.leaf("import", "Create or replace a pipeline from YAML source", "cdsctl pipeline import [name] --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "YAML definition (- for stdin)")
			fs.BoolVar(&force, "force", false, "overwrite an existing pipeline")
		},
		func(key string, _ bool, args []string) error {
			if len(args) > 1 {
				return expectArgs(args, 1, "cdsctl pipeline import [name] --file <path>")
			}
			code, err := a.readSource(file)
			if err != nil {
				return err
			}

			opts := cds.ImportOptions{Force: force}
			var msgs []string
			if len(args) == 1 {
				msgs, err = a.Client.ReplaceFromImport(a.ctx(), key, args[0], string(code), opts)
			} else {
				msgs, err = a.Client.CreateFromImport(a.ctx(), key, string(code), opts)
			}
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Fprintln(a.Stdout, m)
			}
			return nil
		})
}

func pipelinePreviewCommand(a *App) *Command {
	var file string
	return a.leaf("preview", "Show the pipeline YAML source would produce", "cdsctl pipeline preview --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "YAML definition (- for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 0, "cdsctl pipeline preview --file <path>"); err != nil {
				return err
			}
			code, err := a.readSource(file)
			if err != nil {
				return err
			}
			pip, err := a.Client.PreviewPipeline(a.ctx(), key, string(code))
			if err != nil {
				return err
			}
			return a.print(pip, asYAML)
		})
}
