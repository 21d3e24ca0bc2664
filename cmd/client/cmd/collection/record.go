package collection

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
	"tidemark/internal/domain/entity"
)

var RecordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"records"},
	Short:   "Manage timestamped stream records",
}

var recordFlags struct {
	id        string
	title     string
	url       string
	timestamp string
	liveTime  string
	topic     string
	folder    string
	sortOrder int
}

var recordAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a record",
	Long: `Add a record for a moment in a stream. The platform is taken from the
channel URL. Passing --id of an existing record replaces it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		ch, err := entity.ParseChannelURL(recordFlags.url)
		if err != nil {
			return err
		}

		rec := entity.Record{
			Base:       entity.Base{ID: recordFlags.id},
			Title:      recordFlags.title,
			ChannelURL: recordFlags.url,
			Platform:   ch.Platform,
			Timestamp:  recordFlags.timestamp,
			LiveTime:   recordFlags.liveTime,
			Topic:      recordFlags.topic,
			SortOrder:  recordFlags.sortOrder,
		}
		if recordFlags.folder != "" {
			rec.FolderID = &recordFlags.folder
		}

		saved, err := app.Engine().SaveRecord(cmd.Context(), rec)
		if err != nil {
			return err
		}
		printSaved(cmd, "record", saved.ID, app)
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		records, err := app.Store().Records(cmd.Context())
		if err != nil {
			return err
		}

		t := types.NewTable(cmd, "ID", "Title", "Platform", "Timestamp", "Topic", "Folder", "Updated")
		for _, r := range records {
			folder := ""
			if r.FolderID != nil {
				folder = types.Short(*r.FolderID)
			}
			t.AppendRow(table.Row{r.ID, r.Title, r.Platform, r.Timestamp, r.Topic, folder, types.Ago(r.UpdatedAt)})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(records)})
		t.Render()
		return nil
	},
}

func init() {
	f := recordAddCmd.Flags()
	f.StringVar(&recordFlags.id, "id", "", "record id, generated when empty")
	f.StringVar(&recordFlags.title, "title", "", "title")
	f.StringVar(&recordFlags.url, "url", "", "channel or video URL")
	f.StringVar(&recordFlags.timestamp, "timestamp", "", "position inside the video, e.g. 1:02:03")
	f.StringVar(&recordFlags.liveTime, "live-time", "", "wall clock time during a live stream")
	f.StringVar(&recordFlags.topic, "topic", "", "topic")
	f.StringVar(&recordFlags.folder, "folder", "", "folder id")
	f.IntVar(&recordFlags.sortOrder, "sort", 0, "sort order")
	_ = recordAddCmd.MarkFlagRequired("title")
	_ = recordAddCmd.MarkFlagRequired("url")

	RecordCmd.AddCommand(
		recordAddCmd,
		recordListCmd,
		deleteCmd("record", func(ctx context.Context, a *client.App, id string) error {
			return a.Engine().DeleteRecord(ctx, id)
		}),
	)
}
