package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/statyba/storefront/internal/app"
	sitemapapp "github.com/statyba/storefront/internal/application/sitemap"
	"github.com/statyba/storefront/internal/infrastructure/storage"
)

type sitemapOptions struct {
	OutDir      string
	ObjectStore bool
	Prefix      string
}

var errNoSitemapTarget = errors.New("no output target: pass --out, --object-store or set sitemap.output_dir")

func newSitemapCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Sitemap maintenance",
	}
	cmd.AddCommand(newSitemapGenerateCommand(rootOpts))
	return cmd
}

func newSitemapGenerateCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &sitemapOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render every sitemap section and the index",
		Long: `Render the sitemap index and one file per section.

Files go to --out, or to object storage under --prefix when --object-store
is set. Without either flag, sitemap.output_dir from the configuration is used.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.OutDir != "" && opts.ObjectStore {
				return errors.New("--out and --object-store are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, func(ctx context.Context, a *app.App) error {
				publisher, err := sitemapPublisher(opts, a.Config.Sitemap.OutputDir, a.Storage)
				if err != nil {
					return err
				}
				reports, err := a.Services.Sitemaps.Generate(ctx, publisher)
				printReports(cmd.OutOrStdout(), reports)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out", "", "directory to write sitemap files into")
	cmd.Flags().BoolVar(&opts.ObjectStore, "object-store", false, "upload sitemap files to object storage")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "sitemaps", "object key prefix used with --object-store")

	return cmd
}

// sitemapPublisher picks the destination for generated files
func sitemapPublisher(opts *sitemapOptions, defaultDir string, store storage.Uploader) (sitemapapp.Publisher, error) {
	switch {
	case opts.ObjectStore:
		if store == nil {
			return nil, errors.New("object storage is not configured")
		}
		return storage.NewObjectPublisher(store, opts.Prefix), nil
	case opts.OutDir != "":
		return storage.NewDirectoryPublisher(opts.OutDir), nil
	case defaultDir != "":
		return storage.NewDirectoryPublisher(defaultDir), nil
	default:
		return nil, errNoSitemapTarget
	}
}

func printReports(w io.Writer, reports []sitemapapp.GenerateReport) {
	for _, r := range reports {
		suffix := ""
		if r.Partial {
			suffix = " (partial)"
		}
		fmt.Fprintf(w, "%-24s %6d urls%s\n", r.Name, r.URLs, suffix)
	}
}
