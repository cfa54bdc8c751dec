// Command qou-seed loads a product catalog export into the search index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/config"
	dbRedis "github.com/kailas-cloud/qou/internal/db/redis"
	"github.com/kailas-cloud/qou/internal/domain/batch"
	"github.com/kailas-cloud/qou/internal/domain/product"
	logpkg "github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
	catalogrepo "github.com/kailas-cloud/qou/internal/repository/catalog"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
	"github.com/kailas-cloud/qou/internal/transport/csvfeed"
	catalogUC "github.com/kailas-cloud/qou/internal/usecase/catalog"
	"github.com/kailas-cloud/qou/internal/usecase/entity"
	"github.com/kailas-cloud/qou/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// catalogLoader is the part of the catalog service the seeder drives.
type catalogLoader interface {
	Bootstrap(ctx context.Context, recreate bool) error
	Load(ctx context.Context, products []product.Product) ([]batch.Result, error)
}

type productsOptions struct {
	productsPath string
	aislesPath   string
	recreate     bool
	batchSize    int
	workers      int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qou-seed",
		Short:         "Load product catalogs into the qou search index",
		SilenceUsage:  true,
	}
	root.AddCommand(newProductsCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newProductsCmd() *cobra.Command {
	opts := productsOptions{}
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Index an Instacart-style products.csv export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProducts(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.productsPath, "products", "", "path to products.csv")
	cmd.Flags().StringVar(&opts.aislesPath, "aisles", "", "path to aisles.csv")
	cmd.Flags().BoolVar(&opts.recreate, "recreate", false, "drop and recreate the product index first")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "products per write batch (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent write batches (default from config)")
	_ = cmd.MarkFlagRequired("products")
	return cmd
}

func runProducts(ctx context.Context, opts productsOptions) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	metrics.RegisterSearchMetrics()

	repo := catalogrepo.New(store, catalogrepo.Config{
		Layout:     productindex.Layout{IndexName: cfg.Search.IndexName, KeyPrefix: cfg.Search.KeyPrefix},
		SpellDict:  cfg.Search.SpellDict,
		SuggestKey: cfg.Search.SuggestKey,
	})

	batchSize, workers := cfg.Catalog.BatchSize, cfg.Catalog.Workers
	if opts.batchSize > 0 {
		batchSize = opts.batchSize
	}
	if opts.workers > 0 {
		workers = opts.workers
	}
	svc := catalogUC.New(repo, catalogUC.WithBatchSize(batchSize), catalogUC.WithWorkers(workers))

	brands := entity.DefaultBrands
	if configured := cfg.Understanding.Lexicon["BRAND"]; len(configured) > 0 {
		brands = configured
	}

	summary, err := seedProducts(ctx, svc, csvfeed.New(brands), opts)
	if err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		return err
	}
	logger.Info("Seeding finished",
		zap.String("index", cfg.Search.IndexName),
		zap.Int("ok", summary.OK),
		zap.Int("failed", summary.Failed),
	)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d products failed to index", summary.Failed, summary.OK+summary.Failed)
	}
	return nil
}

func seedProducts(ctx context.Context, svc catalogLoader, feed *csvfeed.Feed, opts productsOptions) (batch.Summary, error) {
	products, err := feed.ReadFiles(opts.productsPath, opts.aislesPath)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("read catalog: %w", err)
	}
	logpkg.FromContext(ctx).Info("Catalog read", zap.Int("products", len(products)))

	if err := svc.Bootstrap(ctx, opts.recreate); err != nil {
		return batch.Summary{}, fmt.Errorf("bootstrap index: %w", err)
	}

	results, err := svc.Load(ctx, products)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("load products: %w", err)
	}
	return batch.Summarize(results), nil
}
