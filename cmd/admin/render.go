package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type adminApp struct {
	products   *store.ProductStore
	categories *store.CategoryStore
	out        io.Writer
	logger     *zap.Logger
}

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	warningColor = color.New(color.FgYellow)
	mutedColor   = color.New(color.Faint)
	title        = cases.Title(language.English)
)

func (a *adminApp) renderDashboard(m store.Metrics, lowStock []domain.Product) {
	headerColor.Fprintln(a.out, title.String("catalog dashboard"))

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", title.String("total products"), m.TotalProducts)
	fmt.Fprintf(tw, "%s\t%d\n", title.String("active products"), m.ActiveProducts)
	fmt.Fprintf(tw, "%s\t%d\n", title.String("categories"), m.TotalCategories)
	fmt.Fprintf(tw, "%s\t%d\n", title.String("low stock"), m.LowStockProducts)
	tw.Flush()

	if len(lowStock) == 0 {
		return
	}

	fmt.Fprintln(a.out)
	warningColor.Fprintln(a.out, title.String("low stock products"))
	tw = tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range lowStock {
		fmt.Fprintf(tw, "  %s\t%d\n", p.Name, p.Stock)
	}
	tw.Flush()
}

func (a *adminApp) renderProducts(products []domain.Product) {
	if len(products) == 0 {
		mutedColor.Fprintln(a.out, "No products found")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tSTOCK\tSTATUS")
	for _, p := range products {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		status := "active"
		if !p.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Name, category, p.Price.StringFixed(2), p.Stock, status)
	}
	tw.Flush()
}

func (a *adminApp) renderCategories(categories []domain.Category, counts map[uuid.UUID]int) {
	if len(categories) == 0 {
		mutedColor.Fprintln(a.out, "No categories found")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "NAME\tPRODUCTS\tDESCRIPTION")
	for _, c := range categories {
		description := ""
		if c.Description != nil {
			description = *c.Description
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, counts[c.ID], description)
	}
	tw.Flush()
}
