package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fluentpro/internal/pkg/logger"
	"fluentpro/internal/repository"
	"fluentpro/internal/usecase"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
)

// CatalogIngester crawls configured role-catalog pages and upserts the
// roles it finds as system roles, then hands them to the indexer so they
// become searchable.
type CatalogIngester struct {
	roles      repository.RoleRepository
	industries repository.IndustryRepository
	indexer    usecase.RoleIndexer
	log        *logger.Logger
}

type scrapedRole struct {
	Title       string
	Description string
	Industry    string
}

func NewCatalogIngester(
	roles repository.RoleRepository,
	industries repository.IndustryRepository,
	indexer usecase.RoleIndexer,
	log *logger.Logger,
) *CatalogIngester {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogIngester{
		roles:      roles,
		industries: industries,
		indexer:    indexer,
		log:        log.With("component", "catalog_ingester"),
	}
}

// Run crawls each catalog URL in turn. Per-URL failures are logged and do
// not abort the rest of the run.
func (ing *CatalogIngester) Run(ctx context.Context, catalogURLs []string) error {
	if len(catalogURLs) == 0 {
		return fmt.Errorf("no catalog urls configured")
	}

	var total, failed int
	for _, raw := range catalogURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		items, err := ing.scrapeCatalogPage(ctx, raw)
		if err != nil {
			failed++
			ing.log.Error("catalog page failed", "url", raw, "error", err)
			continue
		}

		stored := ing.storeRoles(ctx, items)
		total += stored
		ing.log.Info("catalog page ingested", "url", raw, "found", len(items), "stored", stored)
	}

	ing.log.Info("catalog ingest finished", "stored", total, "failed_pages", failed)
	if total == 0 && failed > 0 {
		return fmt.Errorf("all catalog pages failed")
	}
	return nil
}

func (ing *CatalogIngester) scrapeCatalogPage(ctx context.Context, pageURL string) ([]scrapedRole, error) {
	allowed := hostFromURL(pageURL)
	var c *colly.Collector
	if allowed == "" {
		c = colly.NewCollector()
	} else {
		c = colly.NewCollector(colly.AllowedDomains(allowed))
	}
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 500 * time.Millisecond, Delay: 300 * time.Millisecond})

	items := make([]scrapedRole, 0)
	dedup := map[string]struct{}{}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "fluentpro-catalog-bot/1.0")
	})

	c.OnHTML("[data-role-title], .role-card", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.Attr("data-role-title"))
		if title == "" {
			title = strings.TrimSpace(e.DOM.Find(".role-title").Text())
		}
		if title == "" {
			return
		}
		key := strings.ToLower(title)
		if _, ok := dedup[key]; ok {
			return
		}
		dedup[key] = struct{}{}

		items = append(items, scrapedRole{
			Title:       title,
			Description: strings.TrimSpace(e.DOM.Find(".role-description").Text()),
			Industry:    strings.TrimSpace(e.DOM.Find(".role-industry").Text()),
		})
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return items, nil
}

func (ing *CatalogIngester) storeRoles(ctx context.Context, items []scrapedRole) int {
	stored := 0
	for _, it := range items {
		industryID := ing.resolveIndustry(ctx, it.Industry)

		role, err := ing.roles.UpsertSystemRole(ctx, it.Title, it.Description, industryID)
		if err != nil {
			ing.log.Warn("role upsert failed", "title", it.Title, "error", err)
			continue
		}
		stored++

		if ing.indexer != nil && role.EmbeddedAt == nil {
			ing.indexer.EnqueueRole(role)
		}
	}
	return stored
}

func (ing *CatalogIngester) resolveIndustry(ctx context.Context, name string) *uuid.UUID {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	industry, err := ing.industries.FindByName(ctx, name)
	if err != nil {
		return nil
	}
	return &industry.ID
}

func hostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}
