package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sermonfeed/internal/catalog"
	"sermonfeed/internal/video"
)

var (
	listType string
	listURL  string
	listFile string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Read the video CSV and print one category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := video.ParseType(listType)
		if err != nil {
			return err
		}

		cfg := state.cfg
		overrideString(&cfg.CSVURL, listURL)

		var src catalog.Source = catalog.FileSource{Path: cfg.OutputPath}
		switch {
		case listFile != "":
			src = catalog.FileSource{Path: listFile}
		case cfg.CSVURL != "":
			src = catalog.NewHTTPSource(cfg.CSVURL, cfg.FetchTimeout)
		}

		res := catalog.New(src, nil, state.logger).Load(cmd.Context(), typ)
		if err := printVideos(cmd.OutOrStdout(), res.Videos); err != nil {
			return err
		}
		return res.Err
	},
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", string(video.TypeSermon), "Category to list: sermon or live")
	listCmd.Flags().StringVar(&listURL, "url", "", "Read the CSV from this URL (default: SERMONFEED_CSV_URL)")
	listCmd.Flags().StringVarP(&listFile, "file", "f", "", "Read the CSV from this file")
}

func printVideos(w io.Writer, videos []video.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tID\tSOURCE\tTITLE")
	for _, v := range videos {
		published := v.PublishedAt
		if t := v.Published(); !t.IsZero() {
			published = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", published, v.ID, v.Source, v.Title)
	}
	return tw.Flush()
}
