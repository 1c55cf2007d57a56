package tokenstore

import "github.com/vanshika/bunqdash/internal/config"

// Open builds the store described by cfg: bbolt when a path is set, memory otherwise,
// sealed when a secret is set.
func Open(cfg config.TokenStoreConfig) (Store, error) {
	var store Store = NewMemoryStore()
	if cfg.Path != "" {
		bs, err := OpenBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		store = bs
	}
	if cfg.Secret == "" {
		return store, nil
	}
	sealed, err := Seal(store, cfg.Secret)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return sealed, nil
}
