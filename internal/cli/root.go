package cli

// Root returns the cdsctl command tree.
func Root(app *App) *Command {
	return &Command{
		Name:    "cdsctl",
		Summary: "Manage CDS pipelines",
		Subcommands: []*Command{
			pipelineCommand(app),
			stageCommand(app),
			jobCommand(app),
			parameterCommand(app),
		},
	}
}
