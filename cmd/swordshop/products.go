package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/pricing"
	"github.com/urfave/cli/v2"
)

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: "swordshop.db", EnvVars: []string{"CATALOG_DB_PATH"}, Usage: "catalog SQLite file"},
			&cli.StringFlag{Name: "price-range", Value: string(catalog.PriceAll), Usage: "all, under-10k, 10k-50k, 50k-100k or over-100k"},
			&cli.BoolFlag{Name: "in-stock", Usage: "only products with stock"},
			&cli.BoolFlag{Name: "on-sale", Usage: "only discounted products"},
			&cli.StringFlag{Name: "category", Usage: "category name, e.g. katanas"},
		},
		Action: func(c *cli.Context) error {
			priceRange, err := catalog.ParsePriceRange(c.String("price-range"))
			if err != nil {
				return err
			}

			repo, err := catalog.NewRepository(c.String("db"))
			if err != nil {
				return err
			}
			defer repo.Close()
			if err := repo.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run catalog migrations: %w", err)
			}

			products, err := repo.ListProducts(c.Context, catalog.Filter{
				PriceRange:  priceRange,
				InStockOnly: c.Bool("in-stock"),
				OnSaleOnly:  c.Bool("on-sale"),
				Category:    c.String("category"),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tSTOCK")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Category, pricing.FormatPKR(p.Price), p.Stock)
			}
			return tw.Flush()
		},
	}
}
