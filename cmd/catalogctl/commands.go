package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/DonatHalimi/OmniShop/pkg/database"
	"github.com/DonatHalimi/OmniShop/pkg/httpclient"
	"github.com/DonatHalimi/OmniShop/pkg/logger"

	"github.com/DonatHalimi/OmniShop/internal/catalog"
	"github.com/DonatHalimi/OmniShop/internal/catalog/cache"
	"github.com/DonatHalimi/OmniShop/internal/catalog/fakestore"
	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/listing"
)

type options struct {
	baseURL  string
	timeout  time.Duration
	retries  int
	logLevel string
	sort     string
	redis    database.RedisConfig
}

func (o *options) logger() *slog.Logger {
	return logger.NewWithWriter("catalogctl", o.logLevel, os.Stderr)
}

func (o *options) gateway() catalog.Gateway {
	log := o.logger()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = o.timeout
	cfg.MaxRetries = o.retries
	cfg.UserAgent = "omnishop-catalogctl"
	return fakestore.NewClient(o.baseURL, httpclient.New(cfg), log)
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout*time.Duration(o.retries+1))
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Browse the product catalog",
		Long:          `Lists, sorts and searches the catalog served by the configured catalog API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "https://fakestoreapi.com", "catalog API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	root.PersistentFlags().IntVar(&opts.retries, "retries", 2, "retries on transient failures")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		productsCmd(opts),
		categoryCmd(opts),
		searchCmd(opts),
		categoriesCmd(opts),
		productCmd(opts),
		cacheCmd(opts),
	)
	return root
}

func addSortFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.sort, "sort", string(listing.Relevance),
		"display order: relevance, titleAsc, titleDesc, priceAsc or priceDesc")
}

func productsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts, func(ctx context.Context, gw catalog.Gateway) ([]domain.Product, error) {
				return gw.ListProducts(ctx)
			})
		},
	}
	addSortFlag(cmd, opts)
	return cmd
}

func categoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category <name>",
		Short: "List the products of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, func(ctx context.Context, gw catalog.Gateway) ([]domain.Product, error) {
				return gw.ListByCategory(ctx, args[0])
			})
		},
	}
	addSortFlag(cmd, opts)
	return cmd
}

func searchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List products whose title contains the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, func(ctx context.Context, gw catalog.Gateway) ([]domain.Product, error) {
				all, err := gw.ListProducts(ctx)
				if err != nil {
					return nil, err
				}
				return listing.Filter(all, args[0]), nil
			})
		},
	}
	addSortFlag(cmd, opts)
	return cmd
}

func categoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			names, err := opts.gateway().ListCategories(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func productCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			p, err := opts.gateway().GetProduct(ctx, id)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%d\n", p.ID)
			fmt.Fprintf(w, "Title\t%s\n", p.Title)
			fmt.Fprintf(w, "Price\t%s\n", p.Price.StringFixed(2))
			fmt.Fprintf(w, "Category\t%s\n", p.Category)
			fmt.Fprintf(w, "Rating\t%.1f (%d)\n", p.Rating.Rate, p.Rating.Count)
			return w.Flush()
		},
	}
}

func cacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the storefront's Redis catalog cache",
	}
	opts.redis = database.DefaultRedisConfig()
	cmd.PersistentFlags().StringVar(&opts.redis.Addr, "redis-addr", opts.redis.Addr, "Redis address")
	cmd.PersistentFlags().StringVar(&opts.redis.Password, "redis-password", "", "Redis password")
	cmd.PersistentFlags().IntVar(&opts.redis.DB, "redis-db", 0, "Redis database")

	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached catalog response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			rdb, err := database.NewRedisClient(ctx, opts.redis)
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close() }()

			removed, err := cache.New(opts.gateway(), rdb, 0, opts.logger()).Invalidate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached catalog response(s)\n", removed)
			return nil
		},
	})
	return cmd
}

type fetchFunc func(ctx context.Context, gw catalog.Gateway) ([]domain.Product, error)

func runList(cmd *cobra.Command, opts *options, fetch fetchFunc) error {
	key, err := listing.ParseSortKey(opts.sort)
	if err != nil {
		return err
	}

	ctx, cancel := opts.context(cmd)
	defer cancel()

	products, err := fetch(ctx, opts.gateway())
	if err != nil {
		return err
	}
	return printProducts(cmd.OutOrStdout(), listing.Sort(products, key))
}

func printProducts(out io.Writer, products []domain.Product) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRICE\tCATEGORY\tTITLE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Price.StringFixed(2), p.Category, p.Title)
	}
	fmt.Fprintf(w, "\n%d product(s)\n", len(products))
	return w.Flush()
}
