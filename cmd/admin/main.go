package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"catalog-admin/internal/client"
	"catalog-admin/internal/config"
	"catalog-admin/internal/logger"
	"catalog-admin/internal/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const usage = `Usage: admin <command> [flags]

Commands:
  dashboard                         catalog totals and low stock products
  products [-search s] [-category c] list products, optionally filtered
  categories                        list categories with product counts
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()

	// Keep the terminal for the report; only warnings go to the log.
	log, err := logger.New(cfg.Server.Env, "warn")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.Client, log)
	app := &adminApp{
		products:   store.NewProductStore(api, log),
		categories: store.NewCategoryStore(api, log),
		out:        os.Stdout,
		logger:     log,
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *adminApp) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "dashboard":
		return a.dashboard(ctx)

	case "products":
		fs := flag.NewFlagSet("products", flag.ContinueOnError)
		search := fs.String("search", "", "filter by name, description or category name")
		category := fs.String("category", "", "category name or id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.listProducts(ctx, *search, *category)

	case "categories":
		return a.listCategories(ctx)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *adminApp) dashboard(ctx context.Context) error {
	a.products.FetchProducts(ctx)
	a.categories.FetchCategories(ctx)

	products := a.products.State()
	categories := a.categories.State()
	if err := stateError(products.Error, categories.Error); err != nil {
		return err
	}

	a.renderDashboard(store.ComputeMetrics(products, categories), store.LowStock(products))
	return nil
}

func (a *adminApp) listProducts(ctx context.Context, search, category string) error {
	if category == "" {
		a.products.FetchProducts(ctx)
	} else {
		id, err := a.resolveCategory(ctx, category)
		if err != nil {
			return err
		}
		a.products.FetchProductsByCategory(ctx, id)
	}

	if search != "" {
		a.products.FilterProducts(search)
	}

	state := a.products.State()
	if err := stateError(state.Error); err != nil {
		return err
	}

	a.renderProducts(state.FilteredItems)
	return nil
}

func (a *adminApp) listCategories(ctx context.Context) error {
	a.categories.FetchCategories(ctx)
	a.products.FetchProducts(ctx)

	categories := a.categories.State()
	products := a.products.State()
	if err := stateError(categories.Error, products.Error); err != nil {
		return err
	}

	counts := make(map[uuid.UUID]int)
	for _, p := range products.Items {
		counts[p.CategoryID]++
	}
	a.renderCategories(categories.Items, counts)
	return nil
}

// resolveCategory accepts an id or a case-insensitive category name
func (a *adminApp) resolveCategory(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	a.categories.FetchCategories(ctx)
	state := a.categories.State()
	if err := stateError(state.Error); err != nil {
		return uuid.Nil, err
	}
	for _, c := range state.Items {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}

	a.logger.Debug("Category lookup failed", zap.String("ref", ref))
	return uuid.Nil, fmt.Errorf("category %q not found", ref)
}

func stateError(messages ...string) error {
	for _, msg := range messages {
		if msg != "" {
			return fmt.Errorf("%s", msg)
		}
	}
	return nil
}
