package cache

import (
	"net/url"
	"strings"
)

// Namespaces used by the services
const (
	NamespaceProducts     = "products"
	NamespaceProductLikes = "product_likes"
)

// Key joins a namespace and key parts with ':'
func Key(namespace string, parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}

// QueryKey builds a deterministic key from query parameters. Empty values
// are dropped and the rest are encoded sorted by name, so equivalent
// requests share a key regardless of parameter order.
func QueryKey(namespace, kind string, params url.Values) string {
	clean := url.Values{}
	for name, values := range params {
		for _, v := range values {
			if v != "" {
				clean.Add(name, v)
			}
		}
	}
	return Key(namespace, kind, clean.Encode())
}
