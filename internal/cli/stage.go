package cli

import (
	"github.com/spf13/pflag"

	"github.com/abdesslem/cds/internal/domain"
)

func stageCommand(a *App) *Command {
	return &Command{
		Name:    "stage",
		Summary: "Manage the stages of a pipeline",
		Subcommands: []*Command{
			stageAddCommand(a),
			stageUpdateCommand(a),
			a.leaf("delete", "Remove a stage", "cdsctl stage delete <pipeline> <stage-id> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 2, "cdsctl stage delete <pipeline> <stage-id>"); err != nil {
						return err
					}
					stageID, err := parseID("stage-id", args[1])
					if err != nil {
						return err
					}
					pip, err := a.Client.DeleteStage(a.ctx(), key, args[0], stageID)
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			a.leaf("move", "Move a stage to a new build order", "cdsctl stage move <pipeline> <stage-id> <build-order> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 3, "cdsctl stage move <pipeline> <stage-id> <build-order>"); err != nil {
						return err
					}
					stageID, err := parseID("stage-id", args[1])
					if err != nil {
						return err
					}
					order, err := parseID("build-order", args[2])
					if err != nil {
						return err
					}
					pip, err := a.Client.MoveStage(a.ctx(), key, args[0], domain.Stage{ID: stageID, BuildOrder: int(order)})
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
		},
	}
}

func stageAddCommand(a *App) *Command {
	var disabled bool
	return a.leaf("add", "Append a stage to a pipeline", "cdsctl stage add <pipeline> <stage-name> [flags]",
		func(fs *pflag.FlagSet) {
			fs.BoolVar(&disabled, "disabled", false, "create the stage disabled")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 2, "cdsctl stage add <pipeline> <stage-name>"); err != nil {
				return err
			}
			pip, err := a.Client.InsertStage(a.ctx(), key, args[0], domain.Stage{Name: args[1], Enabled: !disabled})
			if err != nil {
				return err
			}
			return a.print(pip, asYAML)
		})
}

func stageUpdateCommand(a *App) *Command {
	var file string
	return a.leaf("update", "Replace a stage with a JSON or YAML body", "cdsctl stage update <pipeline> <stage-id> --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "stage body (.json, .yaml, - for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 2, "cdsctl stage update <pipeline> <stage-id> --file <path>"); err != nil {
				return err
			}
			stageID, err := parseID("stage-id", args[1])
			if err != nil {
				return err
			}
			var stage domain.Stage
			if err := a.readBody(file, &stage); err != nil {
				return err
			}
			stage.ID = stageID
			pip, err := a.Client.UpdateStage(a.ctx(), key, args[0], stage)
			if err != nil {
				return err
			}
			return a.print(pip, asYAML)
		})
}

func jobCommand(a *App) *Command {
	return &Command{
		Name:    "job",
		Summary: "Manage the jobs of a stage",
		Subcommands: []*Command{
			jobAddCommand(a),
			jobUpdateCommand(a),
			a.leaf("delete", "Remove a job", "cdsctl job delete <pipeline> <stage-id> <action-id> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 3, "cdsctl job delete <pipeline> <stage-id> <action-id>"); err != nil {
						return err
					}
					stageID, err := parseID("stage-id", args[1])
					if err != nil {
						return err
					}
					actionID, err := parseID("action-id", args[2])
					if err != nil {
						return err
					}
					pip, err := a.Client.DeleteJob(a.ctx(), key, args[0], stageID, actionID)
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
		},
	}
}

func jobAddCommand(a *App) *Command {
	var file string
	return a.leaf("add", "Add a job to a stage", "cdsctl job add <pipeline> <stage-id> --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "job body (.json, .yaml, - for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 2, "cdsctl job add <pipeline> <stage-id> --file <path>"); err != nil {
				return err
			}
			stageID, err := parseID("stage-id", args[1])
			if err != nil {
				return err
			}
			var job domain.Job
			if err := a.readBody(file, &job); err != nil {
				return err
			}
			pip, err := a.Client.AddJob(a.ctx(), key, args[0], stageID, job)
			if err != nil {
				return err
			}
			return a.print(pip, asYAML)
		})
}

func jobUpdateCommand(a *App) *Command {
	var file string
	return a.leaf("update", "Replace a job with a JSON or YAML body", "cdsctl job update <pipeline> <stage-id> <action-id> --file <path> [flags]",
		func(fs *pflag.FlagSet) {
			fs.StringVarP(&file, "file", "f", "", "job body (.json, .yaml, - for stdin)")
		},
		func(key string, asYAML bool, args []string) error {
			if err := expectArgs(args, 3, "cdsctl job update <pipeline> <stage-id> <action-id> --file <path>"); err != nil {
				return err
			}
			stageID, err := parseID("stage-id", args[1])
			if err != nil {
				return err
			}
			actionID, err := parseID("action-id", args[2])
			if err != nil {
				return err
			}
			var job domain.Job
			if err := a.readBody(file, &job); err != nil {
				return err
			}
			job.PipelineActionID = actionID
			job.PipelineStageID = stageID
			pip, err := a.Client.UpdateJob(a.ctx(), key, args[0], stageID, job)
			if err != nil {
				return err
			}
			return a.print(pip, asYAML)
		})
}
