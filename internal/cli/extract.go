package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docmeta/internal/common"
)

func newExtractCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract and print a document's metadata and hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.extract(cmd, args[0], save)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Also store the result in the database")
	return cmd
}

func newSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Extract a document's metadata and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.extract(cmd, args[0], true)
		},
	}
}

// extract prints whatever the extraction produced, error mappings included;
// those are data, not command failures. Only storage problems fail the command.
func (a *app) extract(cmd *cobra.Command, path string, save bool) error {
	ctx := common.WithSource(cmd.Context(), cmd.Name())
	out := cmd.OutOrStdout()

	run := a.worker.Run
	if save {
		// open storage first so a bad database fails before the parse
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		run = svc.Extract
	}
	outcome, err := run(ctx, path)
	if err != nil {
		return err
	}

	fields := outcome.Result.Fields()
	if err := writeJSON(out, fields); err != nil {
		return err
	}
	fmt.Fprintf(out, "Hash: %s\n", outcome.Hash)
	if !save {
		return nil
	}

	saved, err := a.svc.Save(ctx, path, fields)
	if err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	fmt.Fprintf(out, "Saved record %d\n", saved.ID)
	writeDuplicates(out, saved.Duplicates)
	return nil
}
