package collection

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
	"tidemark/internal/domain/entity"
)

var BookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bookmarks"},
	Short:   "Manage channel bookmarks",
}

var bookmarkFlags struct {
	id        string
	url       string
	name      string
	notes     string
	sortOrder int
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Bookmark a YouTube or Twitch channel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ch, err := entity.ParseChannelURL(bookmarkFlags.url)
		if err != nil {
			return err
		}

		name := bookmarkFlags.name
		if name == "" {
			name = ch.ID
		}
		saved, err := app.Engine().SaveBookmark(cmd.Context(), entity.ChannelBookmark{
			Base:        entity.Base{ID: bookmarkFlags.id},
			ChannelID:   ch.ID,
			ChannelName: name,
			Platform:    ch.Platform,
			Notes:       bookmarkFlags.notes,
			SortOrder:   bookmarkFlags.sortOrder,
		})
		if err != nil {
			return err
		}
		printSaved(cmd, "bookmark", saved.ID, app)
		return nil
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List channel bookmarks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		bookmarks, err := app.Store().ChannelBookmarks(cmd.Context())
		if err != nil {
			return err
		}

		t := types.NewTable(cmd, "ID", "Platform", "Channel", "Name", "Notes", "Updated")
		for _, b := range bookmarks {
			t.AppendRow(table.Row{b.ID, b.Platform, b.ChannelID, b.ChannelName, b.Notes, types.Ago(b.UpdatedAt)})
		}
		t.Render()
		return nil
	},
}

func init() {
	f := bookmarkAddCmd.Flags()
	f.StringVar(&bookmarkFlags.id, "id", "", "bookmark id, generated when empty")
	f.StringVar(&bookmarkFlags.url, "url", "", "channel URL")
	f.StringVar(&bookmarkFlags.name, "name", "", "display name, defaults to the channel id")
	f.StringVar(&bookmarkFlags.notes, "notes", "", "notes")
	f.IntVar(&bookmarkFlags.sortOrder, "sort", 0, "sort order")
	_ = bookmarkAddCmd.MarkFlagRequired("url")

	BookmarkCmd.AddCommand(
		bookmarkAddCmd,
		bookmarkListCmd,
		deleteCmd("bookmark", func(ctx context.Context, a *client.App, id string) error {
			return a.Engine().DeleteBookmark(ctx, id)
		}),
	)
}
