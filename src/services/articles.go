package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"n8n-optimizer/src/config"
)

var ErrArticleNotFound = errors.New("article not found")

const (
	articlesCacheKey = "articles:list"
	maxArticlePages  = 10
)

type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	PublishedAt string   `json:"published_at"`
	Tags        []string `json:"tags"`
}

// ArticleService reads blog articles from an Airtable table.
// Results are cached in the store for CacheTTL. Any failure to fetch falls
// back to the built-in article set, so List always has something to show.
type ArticleService struct {
	cfg    config.ArticlesConfig
	store  KeyValueStore
	client *http.Client
	logger *slog.Logger
}

func NewArticleService(cfg config.ArticlesConfig, store KeyValueStore, client *http.Client) *ArticleService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ArticleService{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: slog.With("component", "articles"),
	}
}

// List returns the cached articles, then the remote ones, then the static set
func (s *ArticleService) List(ctx context.Context) []Article {
	var cached []Article
	found, err := s.store.Get(ctx, articlesCacheKey, &cached)
	if err != nil {
		s.logger.Warn("Failed to read article cache", "error", err)
	}
	if found && len(cached) > 0 {
		return cached
	}

	articles, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("Falling back to static articles", "error", err)
		return StaticArticles()
	}

	if err := s.store.Set(ctx, articlesCacheKey, articles, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache articles", "error", err)
	}
	return articles
}

// Get finds an article by slug
func (s *ArticleService) Get(ctx context.Context, slug string) (Article, error) {
	for _, article := range s.List(ctx) {
		if article.Slug == slug {
			return article, nil
		}
	}
	return Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, slug)
}

type airtableRecord struct {
	ID     string `json:"id"`
	Fields struct {
		Title       string   `json:"Title"`
		Slug        string   `json:"Slug"`
		Excerpt     string   `json:"Excerpt"`
		Content     string   `json:"Content"`
		Author      string   `json:"Author"`
		PublishedAt string   `json:"PublishedAt"`
		Tags        []string `json:"Tags"`
	} `json:"fields"`
}

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

func (s *ArticleService) fetch(ctx context.Context) ([]Article, error) {
	if s.cfg.Token == "" || s.cfg.BaseID == "" {
		return nil, errors.New("airtable is not configured")
	}

	var articles []Article
	offset := ""
	for page := 0; page < maxArticlePages; page++ {
		result, err := s.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, record := range result.Records {
			if record.Fields.Slug == "" {
				continue
			}
			articles = append(articles, Article{
				ID:          record.ID,
				Title:       record.Fields.Title,
				Slug:        record.Fields.Slug,
				Excerpt:     record.Fields.Excerpt,
				Content:     record.Fields.Content,
				Author:      record.Fields.Author,
				PublishedAt: record.Fields.PublishedAt,
				Tags:        record.Fields.Tags,
			})
		}
		if result.Offset == "" {
			break
		}
		offset = result.Offset
	}

	if len(articles) == 0 {
		return nil, errors.New("airtable returned no articles")
	}
	return articles, nil
}

func (s *ArticleService) fetchPage(ctx context.Context, offset string) (airtablePage, error) {
	endpoint := fmt.Sprintf("%s/v0/%s/%s",
		strings.TrimRight(s.cfg.URL, "/"), url.PathEscape(s.cfg.BaseID), url.PathEscape(s.cfg.Table))

	query := url.Values{}
	query.Set("sort[0][field]", "PublishedAt")
	query.Set("sort[0][direction]", "desc")
	if offset != "" {
		query.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return airtablePage{}, fmt.Errorf("build airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return airtablePage{}, fmt.Errorf("airtable request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return airtablePage{}, fmt.Errorf("airtable returned status %d", resp.StatusCode)
	}

	var page airtablePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return airtablePage{}, fmt.Errorf("decode airtable response: %w", err)
	}
	return page, nil
}

// StaticArticles is the built-in article set shown when Airtable is unavailable
func StaticArticles() []Article {
	return []Article{
		{
			ID:          "static-1",
			Title:       "Five signs your n8n workflow needs error handling",
			Slug:        "n8n-error-handling",
			Excerpt:     "Silent failures are the most expensive kind. Here is how to spot them early.",
			Content:     "Every workflow that talks to an external API will eventually see a failure. Add an Error Trigger workflow, enable Continue On Fail where a partial result is acceptable and route HTTP errors to a dedicated branch.",
			Author:      "Workflow Optimizer Team",
			PublishedAt: "2024-05-02",
			Tags:        []string{"n8n", "error-handling"},
		},
		{
			ID:          "static-2",
			Title:       "Batching HTTP requests in n8n",
			Slug:        "n8n-batching-http-requests",
			Excerpt:     "Split In Batches keeps you under rate limits and speeds up large runs.",
			Content:     "Instead of sending one request per item, group items with Split In Batches and loop until every batch is processed. Most APIs accept batch sizes between 10 and 100.",
			Author:      "Workflow Optimizer Team",
			PublishedAt: "2024-04-18",
			Tags:        []string{"n8n", "performance"},
		},
		{
			ID:          "static-3",
			Title:       "Caching API responses between executions",
			Slug:        "n8n-caching-results",
			Excerpt:     "Stop paying for the same lookup twice.",
			Content:     "Values that rarely change can be stored in Redis or in workflow static data. Check the cache with an IF node before calling the API and write the fresh value back with an expiry.",
			Author:      "Workflow Optimizer Team",
			PublishedAt: "2024-03-30",
			Tags:        []string{"n8n", "caching"},
		},
	}
}
