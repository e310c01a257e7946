// Package web implements codex.Source for scraped HTML documentation:
// multi-page books with enumerable chapter URLs, and single pages split
// into sections on their h2 headings (style guides, PEPs, RFC-like docs).
//
// Readable text extraction goes through go-readability, with a plain
// tag-stripping fallback for pages readability cannot parse.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	codex "github.com/nevindra/codex"
)

const userAgent = "Mozilla/5.0 (compatible; CodexBot/1.0)"

// maxPageBytes caps how much of a page body is read.
const maxPageBytes = 4 << 20

// Book is a codex.Source for a multi-page manual or book whose chapters
// live at predictable URLs. Each chapter becomes one SourceDocument.
type Book struct {
	site   string
	urls   []string
	client *http.Client
}

var _ codex.Source = (*Book)(nil)

// NewBook creates a Book source fetching the given chapter URLs in order.
func NewBook(site string, chapterURLs []string, opts ...Option) *Book {
	b := &Book{site: site, urls: chapterURLs, client: defaultClient()}
	for _, o := range opts {
		o(&b.client)
	}
	return b
}

// ChapterURLs builds the URL list for books with zero-padded chapter
// files, e.g. ChapterURLs(base, "chap%02d.html", 20) for chap00..chap19.
func ChapterURLs(baseURL, pattern string, n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = strings.TrimRight(baseURL, "/") + "/" + fmt.Sprintf(pattern, i)
	}
	return urls
}

// Site returns the source name.
func (b *Book) Site() string { return b.site }

// Fetch downloads every chapter and returns one document per chapter,
// in chapter order. The chapter index (1-based) becomes the page number.
func (b *Book) Fetch(ctx context.Context) ([]codex.SourceDocument, error) {
	docs := make([]codex.SourceDocument, 0, len(b.urls))
	for i, chapterURL := range b.urls {
		title, text, err := fetchReadable(ctx, b.client, chapterURL)
		if err != nil {
			return nil, &codex.FetchError{Site: b.site, Document: chapterURL, Err: err}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if title == "" {
			title = fmt.Sprintf("chapter %d", i+1)
		}
		docs = append(docs, codex.SourceDocument{
			Name:        title,
			SectionName: title,
			URL:         chapterURL,
			Pages:       []codex.Page{{Number: i + 1, Text: text}},
		})
	}
	return docs, nil
}

// Sectioned is a codex.Source for one long page carved into documents on
// its h2 headings. Each section becomes one SourceDocument.
type Sectioned struct {
	site   string
	url    string
	client *http.Client
}

var _ codex.Source = (*Sectioned)(nil)

// NewSectioned creates a Sectioned source for the page at pageURL.
func NewSectioned(site, pageURL string, opts ...Option) *Sectioned {
	s := &Sectioned{site: site, url: pageURL, client: defaultClient()}
	for _, o := range opts {
		o(&s.client)
	}
	return s
}

// Site returns the source name.
func (s *Sectioned) Site() string { return s.site }

// Fetch downloads the page once and returns one document per h2 section,
// in page order. The section index (1-based) becomes the page number.
// Content before the first h2 is skipped (navigation, abstract headers).
func (s *Sectioned) Fetch(ctx context.Context) ([]codex.SourceDocument, error) {
	html, err := fetchHTML(ctx, s.client, s.url)
	if err != nil {
		return nil, &codex.FetchError{Site: s.site, Err: err}
	}

	sections := splitH2Sections(html)
	docs := make([]codex.SourceDocument, 0, len(sections))
	for i, sec := range sections {
		text := strings.TrimSpace(StripHTML(sec.body))
		if sec.title == "" || text == "" {
			continue
		}
		docs = append(docs, codex.SourceDocument{
			Name:        sec.title,
			SectionName: sec.title,
			URL:         s.url,
			Pages:       []codex.Page{{Number: i + 1, Text: text}},
		})
	}
	return docs, nil
}

// Option adjusts the HTTP client used by a source.
type Option func(**http.Client)

// WithHTTPClient replaces the default client (15-second timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(target **http.Client) { *target = c }
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// fetchHTML downloads a URL and returns the raw HTML.
func fetchHTML(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// fetchReadable downloads a URL and extracts title plus readable text,
// preferring readability and falling back to tag stripping.
func fetchReadable(ctx context.Context, client *http.Client, rawURL string) (title, text string, err error) {
	html, err := fetchHTML(ctx, client, rawURL)
	if err != nil {
		return "", "", err
	}

	parsedURL, _ := url.Parse(rawURL)
	article, rerr := readability.FromReader(strings.NewReader(html), parsedURL)
	if rerr == nil && article.TextContent != "" {
		return strings.TrimSpace(article.Title), strings.TrimSpace(article.TextContent), nil
	}

	return "", StripHTML(html), nil
}
