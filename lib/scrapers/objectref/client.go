// Package objectref scrapes the object-reference documentation: a table
// of contents page per cloud linking to one page per object, each page
// carrying a description and a field table.
package objectref

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"sfcatalog/lib/fetchcache"
	"sfcatalog/lib/htmlutil"
	"sfcatalog/lib/restyutil"
	"sfcatalog/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sfcatalog.scrapers.objectref")

// DocSet is one documentation set to scrape, belonging to one cloud.
type DocSet struct {
	Cloud  string `json:"cloud"`
	TocURL string `json:"toc_url"`
}

type Client struct {
	Http *resty.Client

	sets  []DocSet
	cache *fetchcache.Cache
}

type ClientOptions struct {
	Sets []DocSet
	// Cache may be nil to fetch everything fresh.
	Cache *fetchcache.Cache
	// Debug, when non-nil, receives a transcript of every request.
	Debug restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "sfcatalog.scrapers.objectref.http")
	restyutil.DumpTranscripts(client, opts.Debug)

	return &Client{
		Http:  client,
		sets:  opts.Sets,
		cache: opts.Cache,
	}
}

// getPage fetches a page body through the cache.
func (c *Client) getPage(ctx context.Context, pageURL string) ([]byte, error) {
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if ok {
			return body, nil
		}
	}

	res, err := c.Http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: %s", pageURL, res.Status())
	}
	if c.cache != nil {
		err = c.cache.Put(ctx, pageURL, res.StatusCode(), res.Body())
		if err != nil {
			return nil, err
		}
	}
	return res.Body(), nil
}

// ObjectPage is one TOC entry: an object name and where its page lives.
type ObjectPage struct {
	Name  string
	Cloud string
	URL   string
}

// ListObjects walks every configured TOC and returns the object pages it
// links to.
func (c *Client) ListObjects(ctx context.Context) ([]ObjectPage, error) {
	ctx, span := tracer.Start(ctx, "ListObjects")
	defer span.End()

	var pages []ObjectPage
	for _, set := range c.sets {
		setPages, err := c.listSet(ctx, set)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to list doc set")
			return nil, fmt.Errorf("list %s: %w", set.Cloud, err)
		}
		pages = append(pages, setPages...)
	}
	span.SetAttributes(attribute.Int("pages", len(pages)))
	return pages, nil
}

func (c *Client) listSet(ctx context.Context, set DocSet) ([]ObjectPage, error) {
	ctx, span := tracer.Start(ctx, "listSet")
	defer span.End()
	span.SetAttributes(attribute.String("cloud", set.Cloud))

	body, err := c.getPage(ctx, set.TocURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(set.TocURL)
	if err != nil {
		return nil, err
	}

	anchors := htmlutil.GetAnchors(ctx, doc.Find("a"))
	var pages []ObjectPage
	seen := make(map[string]struct{})
	for _, anchor := range anchors {
		if !looksLikeObjectName(anchor.Name) {
			continue
		}
		if _, ok := seen[anchor.Name]; ok {
			continue
		}
		href, err := base.Parse(anchor.Href)
		if err != nil {
			continue
		}
		seen[anchor.Name] = struct{}{}
		pages = append(pages, ObjectPage{
			Name:  anchor.Name,
			Cloud: set.Cloud,
			URL:   href.String(),
		})
	}
	return pages, nil
}

// FetchObject retrieves and parses one object page.
func (c *Client) FetchObject(ctx context.Context, page ObjectPage) (ObjectDoc, error) {
	ctx, span := tracer.Start(ctx, "FetchObject")
	defer span.End()
	span.SetAttributes(attribute.String("name", page.Name))

	body, err := c.getPage(ctx, page.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ObjectDoc{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse page html")
		return ObjectDoc{}, err
	}

	parsed, err := ParseObjectPage(doc, page.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract object data")
		return ObjectDoc{}, err
	}
	parsed.Cloud = page.Cloud
	parsed.URL = page.URL
	return parsed, nil
}
