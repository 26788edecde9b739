package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"morphline/pkg/textmorphs"
)

var lintCmd = &cobra.Command{
	Use:   "lint <pipeline.yaml>",
	Short: "Validate a pipeline definition and its morph references",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	def, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	p, err := def.Build(textmorphs.Registry())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: pipeline %s, %d stages, %d morphs\n",
		p.Name(), len(p.Stages()), len(p.Morphs()))
	return nil
}
