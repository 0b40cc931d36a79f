package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/ritzau/media-graph/pkg/catalog"
	"github.com/ritzau/media-graph/pkg/model"
	"github.com/ritzau/media-graph/pkg/output"
)

func newSearchCmd() *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog for media ids",
		Long: heredoc.Doc(`
			Search AniList by title and print the ids to use as seeds. Results
			are cached per query and type.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseMediaType(mediaType)
			if err != nil {
				return err
			}
			cat, store, err := openCatalog(appConfig)
			if err != nil {
				return err
			}
			defer store.Close()

			page, err := cat.SearchMedia(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			output.PrintSearchResults(os.Stdout, page)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", string(model.MediaTypeAnime), "ANIME or MANGA")
	return cmd
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name>",
		Short: "Show a user's list by status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, store, err := openCatalog(appConfig)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := cat.FetchUserList(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			output.PrintUserList(os.Stdout, args[0], list)
			return nil
		},
	}
}

func newCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Show how many catalog responses are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.OpenStore(appConfig.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Printf("Cache: %s\n", appConfig.Database)
			for _, table := range []string{catalog.TableMedia, catalog.TableUsers, catalog.TableSearches} {
				n, err := store.Count(cmd.Context(), table)
				if err != nil {
					return err
				}
				fmt.Printf("  %-9s %d\n", table, n)
			}
			return nil
		},
	}
}
