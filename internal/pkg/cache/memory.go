package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/Pesokrava/product_catalog/internal/config"
)

// NewMemoryCache creates the in-process cache used when CACHE_DRIVER=memory.
// Items without an explicit TTL fall back to the product page TTL.
func NewMemoryCache(cfg *config.Config) *gocache.Cache {
	return gocache.New(cfg.Cache.ProductPageTTL, cfg.Cache.CleanupInterval)
}
