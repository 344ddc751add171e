package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	Category    string
	PriceCents  int64
	ImageURL    string
	Sizes       []string
	Colors      []string
}

// Apply inserts basic catalog data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-LINEN-SHIRT",
			Name:        "Linen Shirt",
			Description: "Lightweight linen shirt",
			Category:    "shirts",
			PriceCents:  5900,
			ImageURL:    "https://cdn.example.com/img/linen-shirt.jpg",
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []string{"white", "navy"},
		},
		{
			SKU:         "SKU-CANVAS-SNEAKER",
			Name:        "Canvas Sneaker",
			Description: "Low-top canvas sneaker",
			Category:    "shoes",
			PriceCents:  12900,
			ImageURL:    "https://cdn.example.com/img/canvas-sneaker.jpg",
			Sizes:       []string{"39", "40", "41", "42", "43"},
			Colors:      []string{"black", "off-white"},
		},
		{
			SKU:         "SKU-WOOL-BEANIE",
			Name:        "Wool Beanie",
			Description: "Merino wool beanie",
			Category:    "accessories",
			PriceCents:  2900,
			Sizes:       []string{},
			Colors:      []string{"grey", "green"},
		},
		{
			SKU:         "SKU-DENIM-JACKET",
			Name:        "Denim Jacket",
			Description: "Classic denim jacket",
			Category:    "jackets",
			PriceCents:  19900,
			ImageURL:    "https://cdn.example.com/img/denim-jacket.jpg",
			Sizes:       []string{"S", "M", "L"},
			Colors:      []string{"indigo"},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, category, price_cents, image_url, sizes, colors)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.Category, p.PriceCents, p.ImageURL, p.Sizes, p.Colors)
	if err != nil {
		return err
	}
	return nil
}
