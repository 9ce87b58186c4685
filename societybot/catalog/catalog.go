// Package catalog owns the read-only item catalog: seeding the default item
// set, parsing ingredient lists, and resolving loosely-typed user input to a
// canonical item tag.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
)

const resolveCacheSize = 256

// Ingredient is one parsed entry of an item's ingredient list.
type Ingredient struct {
	Tag string
	Qty int
}

// Catalog is an immutable snapshot of the items table. All lookups after Load
// are memory-only.
type Catalog struct {
	items map[string]*models.Item
	tags  tagSource

	resolveCache *lru.Cache
}

// tagSource implements fuzzy.Source over the canonical tag list.
type tagSource []string

func (t tagSource) Len() int            { return len(t) }
func (t tagSource) String(i int) string { return t[i] }

// Load seeds the default item set if the table is empty, then loads the whole
// catalog into memory.
func Load(ctx context.Context, repo repositories.ItemRepository) (*Catalog, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog items: %w", err)
	}
	if count == 0 {
		for _, item := range DefaultItems() {
			if err := repo.Create(ctx, item); err != nil {
				return nil, fmt.Errorf("failed to seed item %s: %w", item.ItemTag, err)
			}
		}
		slog.Info("Seeded default item catalog",
			slog.String("type", "sys"),
			slog.Int("items", len(DefaultItems())))
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	items := make(map[string]*models.Item, len(all))
	tags := make(tagSource, 0, len(all))
	for _, item := range all {
		items[item.ItemTag] = item
		tags = append(tags, item.ItemTag)
	}
	sort.Strings(tags)

	cache, _ := lru.New(resolveCacheSize)
	return &Catalog{items: items, tags: tags, resolveCache: cache}, nil
}

func (c *Catalog) Get(tag string) (*models.Item, bool) {
	item, ok := c.items[tag]
	return item, ok
}

func (c *Catalog) All() []*models.Item {
	all := make([]*models.Item, 0, len(c.tags))
	for _, tag := range c.tags {
		all = append(all, c.items[tag])
	}
	return all
}

// Resolve maps user input to a catalog item: exact tag first, then
// case-insensitive, then fuzzy match on the tag list. Resolution results are
// cached since command input repeats heavily.
func (c *Catalog) Resolve(query string) (*models.Item, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}
	if item, ok := c.items[query]; ok {
		return item, true
	}

	if cached, ok := c.resolveCache.Get(strings.ToLower(query)); ok {
		item, ok := c.items[cached.(string)]
		return item, ok
	}

	for _, tag := range c.tags {
		if strings.EqualFold(tag, query) {
			c.resolveCache.Add(strings.ToLower(query), tag)
			return c.items[tag], true
		}
	}

	matches := fuzzy.FindFrom(query, c.tags)
	if len(matches) == 0 {
		return nil, false
	}
	tag := c.tags[matches[0].Index]
	c.resolveCache.Add(strings.ToLower(query), tag)
	return c.items[tag], true
}

// Ingredients parses the item's ingredient list into typed entries.
func (c *Catalog) Ingredients(item *models.Item) ([]Ingredient, error) {
	return ParseIngredients(item.Ingredients)
}

// ParseIngredients parses the stored "Tag:qty,Tag:qty" format. An empty
// string means no ingredients.
func ParseIngredients(s string) ([]Ingredient, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ingredients := make([]Ingredient, 0, len(parts))
	for _, part := range parts {
		tag, qtyStr, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			return nil, fmt.Errorf("malformed ingredient entry %q", part)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("malformed ingredient quantity in %q", part)
		}
		ingredients = append(ingredients, Ingredient{Tag: strings.TrimSpace(tag), Qty: qty})
	}
	return ingredients, nil
}
