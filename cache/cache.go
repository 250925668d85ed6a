package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// The cache holds large read-only objects that many goroutines share, such
// as fingerprint key tables for a board size. Objects are built once on
// first use and never evicted.

type cache struct {
	sync.Mutex
	objects map[string]any
}

type loadFunc func(key string) (any, error)

// GlobalObjectCache is our global object cache, of course.
var GlobalObjectCache *cache

var createOnce sync.Once

func (c *cache) load(key string, loadFunc loadFunc) error {
	log.Debug().Str("key", key).Msg("loading into cache")

	obj, err := loadFunc(key)
	if err != nil {
		return err
	}
	c.objects[key] = obj

	return nil
}

func (c *cache) get(key string, loadFunc loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		return obj, nil
	}
	if err := c.load(key, loadFunc); err != nil {
		return nil, err
	}
	return c.objects[key], nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object stored under name, building it with loadFunc if
// this is the first request. A failed load is not cached.
func Load(name string, loadFunc loadFunc) (any, error) {
	createOnce.Do(func() {
		if GlobalObjectCache == nil {
			CreateGlobalObjectCache()
		}
	})
	return GlobalObjectCache.get(name, loadFunc)
}
