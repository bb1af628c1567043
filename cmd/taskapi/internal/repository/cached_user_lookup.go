package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
)

// UserFinder resolves enabled users by username.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// CachedUserLookup fronts a UserFinder with a size- and TTL-bounded LRU.
//
// Only hits are cached; misses and errors always reach the backing finder,
// so a newly created user authenticates immediately while a disabled or
// deleted one keeps authenticating for at most the TTL.
type CachedUserLookup struct {
	next  UserFinder
	cache *expirable.LRU[string, models.User]
}

// NewCachedUserLookup wraps next with a cache of the given size and TTL.
// A non-positive size returns next unchanged.
func NewCachedUserLookup(next UserFinder, size int, ttl time.Duration) UserFinder {
	if size <= 0 {
		return next
	}
	return &CachedUserLookup{
		next:  next,
		cache: expirable.NewLRU[string, models.User](size, nil, ttl),
	}
}

// FindByUsername returns a copy of the cached user, or loads and caches it.
func (c *CachedUserLookup) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := c.cache.Get(username); ok {
		return &user, nil
	}

	user, err := c.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		c.cache.Add(username, *user)
	}
	return user, nil
}

// Invalidate drops a username from the cache.
func (c *CachedUserLookup) Invalidate(username string) {
	c.cache.Remove(username)
}

// Len returns the number of cached users.
func (c *CachedUserLookup) Len() int {
	return c.cache.Len()
}
