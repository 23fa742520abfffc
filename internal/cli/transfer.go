package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/exporter"
	"github.com/artpar/postbox/internal/importer"
	"github.com/artpar/postbox/internal/workspace"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a collection",
		Long: `Export a collection as YAML, a Postman v2.1 collection or curl commands.

Examples:
  postbox export > api.yaml
  postbox export -c "Billing API" --format postman -o billing.postman_collection.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				full, err := a.Store().Collection(coll.ID)
				if err != nil {
					return err
				}
				result, err := exporter.NewRegistry().Export(cmd.Context(), exporter.Format(format), full)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := cmd.OutOrStdout().Write(result.Content)
					return err
				}
				if err := os.WriteFile(output, result.Content, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", full.Name, output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatYAML), "Export format: "+joinFormats(exporter.NewRegistry().Formats()))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	var (
		format string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a collection",
		Long: `Import a YAML collection, a Postman v2.x collection or a curl command
into a new collection of the active project. Use - to read from stdin.

Examples:
  postbox import api.yaml
  postbox import billing.postman_collection.json --name Billing
  echo "curl https://api.example.com/health" | postbox import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := importer.NewDefaultRegistry().Import(cmd.Context(), importer.Format(format), content)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			coll, err := addCollection(a.Store(), result.Collection, name)
			if err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s: %d requests, %d folders\n",
				coll.Name, result.SourceFormat, result.RequestCount, result.FolderCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(importer.FormatAuto), "Import format: auto, curl, postman or yaml")
	cmd.Flags().StringVar(&name, "name", "", "Collection name (default: the imported name)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// addCollection creates a collection in the active project and fills it
// with the imported items.
func addCollection(store workspace.Store, imported *workspace.Collection, name string) (*workspace.Collection, error) {
	project, ok := store.ActiveProject()
	if !ok {
		return nil, fmt.Errorf("no active project")
	}
	if name == "" {
		name = imported.Name
	}
	coll, err := store.CreateCollection(project.ID, name)
	if err != nil {
		return nil, err
	}
	for _, n := range imported.Items {
		if err := store.CreateInside(coll.ID, nil, n); err != nil {
			return nil, fmt.Errorf("add %q: %w", n.Name, err)
		}
	}
	return coll, nil
}

func joinFormats(formats []exporter.Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
