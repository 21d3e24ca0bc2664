package collection

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
	"tidemark/internal/domain/entity"
)

var FolderCmd = &cobra.Command{
	Use:     "folder",
	Aliases: []string{"folders"},
	Short:   "Manage record folders",
}

var folderFlags struct {
	id        string
	name      string
	sortOrder int
}

var folderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or rename a folder",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		saved, err := app.Engine().SaveFolder(cmd.Context(), entity.Folder{
			Base:      entity.Base{ID: folderFlags.id},
			Name:      folderFlags.name,
			SortOrder: folderFlags.sortOrder,
		})
		if err != nil {
			return err
		}
		printSaved(cmd, "folder", saved.ID, app)
		return nil
	},
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		folders, err := app.Store().Folders(cmd.Context())
		if err != nil {
			return err
		}

		t := types.NewTable(cmd, "ID", "Name", "Sort", "Updated")
		for _, f := range folders {
			t.AppendRow(table.Row{f.ID, f.Name, f.SortOrder, types.Ago(f.UpdatedAt)})
		}
		t.Render()
		return nil
	},
}

func init() {
	folderAddCmd.Flags().StringVar(&folderFlags.id, "id", "", "folder id, generated when empty")
	folderAddCmd.Flags().StringVar(&folderFlags.name, "name", "", "folder name")
	folderAddCmd.Flags().IntVar(&folderFlags.sortOrder, "sort", 0, "sort order")
	_ = folderAddCmd.MarkFlagRequired("name")

	FolderCmd.AddCommand(
		folderAddCmd,
		folderListCmd,
		deleteCmd("folder", func(ctx context.Context, a *client.App, id string) error {
			return a.Engine().DeleteFolder(ctx, id)
		}),
	)
}
