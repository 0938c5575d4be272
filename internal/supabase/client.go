package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"gold-lifestyle-backend/internal/config"
	"gold-lifestyle-backend/internal/models"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

type commentRow struct {
	ProductID string `json:"product_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
}

// ListComments returns a product's comments, newest first.
func (c *Client) ListComments(ctx context.Context, productID string) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	_, err := c.Supabase.From("product_comments").
		Select("id, author, body, created_at", "", false).
		Eq("product_id", productID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&comments)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, productID, author, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := c.Supabase.From("product_comments").
		Insert(commentRow{ProductID: productID, Author: author, Body: body}, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}
