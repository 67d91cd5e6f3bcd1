package cli

import (
	"github.com/spf13/pflag"

	"github.com/abdesslem/cds/internal/api/cds"
	"github.com/abdesslem/cds/internal/domain"
)

type parameterFlags struct {
	typ         string
	value       string
	description string
	advanced    bool
}

func (f *parameterFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.typ, "type", "t", domain.ParameterTypeString, "parameter type (string, text, boolean, number, list, pipeline)")
	fs.StringVarP(&f.value, "value", "v", "", "parameter value")
	fs.StringVarP(&f.description, "description", "d", "", "parameter description")
	fs.BoolVar(&f.advanced, "advanced", false, "mark the parameter as advanced")
}

func (f *parameterFlags) parameter(name string) domain.Parameter {
	return domain.Parameter{
		Name:        name,
		Type:        f.typ,
		Value:       f.value,
		Description: f.description,
		Advanced:    f.advanced,
	}
}

func parameterCommand(a *App) *Command {
	var add, update, rename parameterFlags
	return &Command{
		Name:    "parameter",
		Summary: "Manage the parameters of a pipeline",
		Subcommands: []*Command{
			a.leaf("add", "Add a parameter", "cdsctl parameter add <pipeline> <name> [flags]", add.register,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 2, "cdsctl parameter add <pipeline> <name>"); err != nil {
						return err
					}
					pip, err := a.Client.AddParameter(a.ctx(), key, args[0], add.parameter(args[1]))
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			a.leaf("update", "Update a parameter in place", "cdsctl parameter update <pipeline> <name> [flags]", update.register,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 2, "cdsctl parameter update <pipeline> <name>"); err != nil {
						return err
					}
					change := cds.ParameterUpdate(update.parameter(args[1]))
					pip, err := a.Client.UpdateParameter(a.ctx(), key, args[0], change)
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			a.leaf("rename", "Rename a parameter and set its fields", "cdsctl parameter rename <pipeline> <old-name> <new-name> [flags]", rename.register,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 3, "cdsctl parameter rename <pipeline> <old-name> <new-name>"); err != nil {
						return err
					}
					change := cds.ParameterRename(args[1], rename.parameter(args[2]))
					pip, err := a.Client.UpdateParameter(a.ctx(), key, args[0], change)
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
			a.leaf("delete", "Remove a parameter", "cdsctl parameter delete <pipeline> <name> [flags]", nil,
				func(key string, asYAML bool, args []string) error {
					if err := expectArgs(args, 2, "cdsctl parameter delete <pipeline> <name>"); err != nil {
						return err
					}
					pip, err := a.Client.DeleteParameter(a.ctx(), key, args[0], args[1])
					if err != nil {
						return err
					}
					return a.print(pip, asYAML)
				}),
		},
	}
}
