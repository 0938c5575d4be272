// Package cart holds the shopping cart aggregate that checkout consumes.
//
// Lines are keyed by (product, color, size) plus the snapshot taken when the
// line was added (unit price and name). Adding a line whose key already
// exists increases that line's quantity instead of appending a new one, so a
// merge never changes what the customer is charged.
package cart

import (
	"errors"
	"fmt"

	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/money"
)

// ErrTooLarge is returned when a quantity or total no longer fits in int64.
var ErrTooLarge = errors.New("cart total is too large")

type Key struct {
	ProductID  string
	ColorName  string
	Size       string
	PriceCents int64
	Name       string
}

func KeyOf(item models.LineItem) Key {
	return Key{
		ProductID:  item.ProductID,
		ColorName:  item.ColorName,
		Size:       item.Size,
		PriceCents: item.PriceCents,
		Name:       item.Name,
	}
}

// Cart keeps its total in step with its lines. Every mutation that could
// grow the total is checked first and rejected on overflow.
type Cart struct {
	lines []models.LineItem
	index map[Key]int
	total int64
}

func New() *Cart {
	return &Cart{index: make(map[Key]int)}
}

// FromItems builds a cart by adding items in order.
func FromItems(items []models.LineItem) (*Cart, error) {
	c := New()
	for i, item := range items {
		if err := c.Add(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return c, nil
}

// Add merges item into the cart. A zero quantity is treated as one.
func (c *Cart) Add(item models.LineItem) error {
	if item.ProductID == "" {
		return fmt.Errorf("product id is required")
	}
	if item.PriceCents < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if item.Quantity < 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	key := KeyOf(item)
	if i, ok := c.index[key]; ok {
		quantity, err := money.AddCents(c.lines[i].Quantity, item.Quantity)
		if err != nil {
			return ErrTooLarge
		}
		return c.setQuantity(i, quantity)
	}

	subtotal, err := money.MulCents(item.PriceCents, item.Quantity)
	if err != nil {
		return ErrTooLarge
	}
	total, err := money.AddCents(c.total, subtotal)
	if err != nil {
		return ErrTooLarge
	}
	c.index[key] = len(c.lines)
	c.lines = append(c.lines, item)
	c.total = total
	return nil
}

func (c *Cart) Remove(key Key) {
	i, ok := c.index[key]
	if !ok {
		return
	}
	c.total -= c.lines[i].PriceCents * c.lines[i].Quantity
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.reindex()
}

// UpdateQuantity sets the quantity of an existing line, never below one.
func (c *Cart) UpdateQuantity(key Key, quantity int64) error {
	i, ok := c.index[key]
	if !ok {
		return nil
	}
	if quantity < 1 {
		quantity = 1
	}
	return c.setQuantity(i, quantity)
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[Key]int)
	c.total = 0
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []models.LineItem {
	out := make([]models.LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalCents is the exact sum of unit price times quantity over all lines.
func (c *Cart) TotalCents() int64 {
	return c.total
}

// setQuantity replaces line i's quantity, leaving the cart untouched when
// the new subtotal or total would overflow.
func (c *Cart) setQuantity(i int, quantity int64) error {
	line := c.lines[i]
	subtotal, err := money.MulCents(line.PriceCents, quantity)
	if err != nil {
		return ErrTooLarge
	}
	// the old subtotal is already part of total, so this cannot underflow
	rest := c.total - line.PriceCents*line.Quantity
	total, err := money.AddCents(rest, subtotal)
	if err != nil {
		return ErrTooLarge
	}
	c.lines[i].Quantity = quantity
	c.total = total
	return nil
}

func (c *Cart) reindex() {
	c.index = make(map[Key]int, len(c.lines))
	for i, line := range c.lines {
		c.index[KeyOf(line)] = i
	}
}
