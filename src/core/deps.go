package core

import (
	"n8n-optimizer/src/config"
	"n8n-optimizer/src/services"
)

// Deps provides the collaborators of the HTTP API.
// All dependencies must be initialized in cmd/server.
type Deps struct {
	Store    services.KeyValueStore
	Chat     services.Completer
	Articles *services.ArticleService
}

// NewDeps builds the store, chat client and article source from configuration
func NewDeps(cfg config.Config) (*Deps, error) {
	store, err := services.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Store:    store,
		Chat:     services.NewChatService(cfg.Chat),
		Articles: services.NewArticleService(cfg.Articles, store, nil),
	}, nil
}
