// Package metadata looks up bibliographic data on the OpenLibrary API so
// librarians can prefill the book form from an ISBN or a title instead of
// typing everything by hand.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

const (
	defaultBaseURL = "https://openlibrary.org"
	coversBaseURL  = "https://covers.openlibrary.org"
	userAgent      = "Maktaba/1.0 (library catalog)"
	searchLimit    = 5
)

// Lookup is the prefill payload for the book form. Field names line up
// with the book entity where they overlap.
type Lookup struct {
	Title         string   `json:"title,omitempty"`
	Author        string   `json:"author,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedYear int      `json:"publishedYear,omitempty"`
	Description   string   `json:"description,omitempty"`
	CoverURL      string   `json:"coverUrl,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	SourceKey     string   `json:"sourceKey,omitempty"`
}

// OpenLibraryClient queries the OpenLibrary API. Requests are spaced out
// to stay within the API's fair-use limits.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a client against the public API.
func NewOpenLibraryClient() *OpenLibraryClient {
	return newClient(defaultBaseURL, coversBaseURL)
}

func newClient(baseURL, coversURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		coversURL:   coversURL,
		rateLimiter: newRateLimiter(time.Second),
	}
}

// ByISBN resolves one ISBN to a prefill payload.
func (c *OpenLibraryClient) ByISBN(ctx context.Context, isbn string) (*Lookup, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, apperror.New(apperror.KindValidation, "please provide a valid 10 or 13 digit ISBN")
	}

	var edition openLibraryEdition
	status, err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn), &edition)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperror.NewNotFound("isbn " + isbn)
	}
	if status != http.StatusOK {
		return nil, apperror.New(apperror.KindInternal, fmt.Sprintf("metadata lookup failed with status %d", status))
	}

	lookup := c.editionToLookup(&edition, isbn)

	if lookup.Author == "" && len(edition.Authors) > 0 {
		if name, err := c.fetchAuthorName(ctx, edition.Authors[0].Key); err == nil {
			lookup.Author = name
		}
	}
	return lookup, nil
}

// ByTitle searches by title and optional author, returning the best match.
func (c *OpenLibraryClient) ByTitle(ctx context.Context, title, author string) (*Lookup, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.New(apperror.KindValidation, "please provide a title to search for")
	}

	q := title
	if author != "" {
		q = title + " " + author
	}
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=%d", c.baseURL, url.QueryEscape(q), searchLimit)

	var result openLibrarySearchResult
	status, err := c.getJSON(ctx, searchURL, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperror.New(apperror.KindInternal, fmt.Sprintf("metadata search failed with status %d", status))
	}
	if len(result.Docs) == 0 {
		return nil, apperror.NewNotFound("book matching " + title)
	}

	doc := bestMatch(result.Docs, title, author)
	return c.docToLookup(doc), nil
}

// getJSON performs one rate-limited GET and decodes the body. A 404 is
// reported through the status, not as an error, so callers can name the
// missing resource.
func (c *OpenLibraryClient) getJSON(ctx context.Context, rawURL string, out any) (int, error) {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindInternal, "create metadata request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindInternal, "metadata service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, apperror.Wrap(apperror.KindInternal, "decode metadata response", err)
	}
	return resp.StatusCode, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}
	var author struct {
		Name string `json:"name"`
	}
	status, err := c.getJSON(ctx, fmt.Sprintf("%s%s.json", c.baseURL, authorKey), &author)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("author lookup status %d", status)
	}
	return author.Name, nil
}

func (c *OpenLibraryClient) editionToLookup(edition *openLibraryEdition, isbn string) *Lookup {
	lookup := &Lookup{
		Title:     edition.Title,
		ISBN:      isbn,
		SourceKey: edition.Key,
		Pages:     edition.NumberOfPages,
		CoverURL:  fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, isbn),
	}
	if edition.PublishDate != "" {
		lookup.PublishedYear = extractYear(edition.PublishDate)
	}
	if len(edition.Publishers) > 0 {
		lookup.Publisher = edition.Publishers[0]
	}
	// The description is either a bare string or a {type, value} object.
	switch v := edition.Description.(type) {
	case string:
		lookup.Description = v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			lookup.Description = val
		}
	}
	if len(edition.Subjects) > 0 {
		lookup.Subjects = edition.Subjects
	}
	return lookup
}

func (c *OpenLibraryClient) docToLookup(doc *openLibrarySearchDoc) *Lookup {
	lookup := &Lookup{
		Title:         doc.Title,
		PublishedYear: doc.FirstPublishYear,
		SourceKey:     doc.Key,
	}
	if len(doc.AuthorName) > 0 {
		lookup.Author = doc.AuthorName[0]
	}
	if len(doc.Publisher) > 0 {
		lookup.Publisher = doc.Publisher[0]
	}
	if len(doc.ISBN) > 0 {
		lookup.ISBN = doc.ISBN[0]
		lookup.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, doc.ISBN[0])
	} else if doc.CoverI != 0 {
		lookup.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, doc.CoverI)
	}
	if len(doc.Subject) > 0 {
		lookup.Subjects = doc.Subject
		if len(lookup.Subjects) > 10 {
			lookup.Subjects = lookup.Subjects[:10]
		}
	}
	return lookup
}

// bestMatch scores search results by title and author proximity, preferring
// documents that carry an ISBN and a cover.
func bestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	best := &docs[0]
	bestScore := -1
	for i := range docs {
		doc := &docs[i]
		score := 0
		switch {
		case strings.ToLower(doc.Title) == titleLower:
			score += 10
		case strings.Contains(strings.ToLower(doc.Title), titleLower):
			score += 5
		}
		if author != "" {
			for _, docAuthor := range doc.AuthorName {
				if strings.ToLower(docAuthor) == authorLower {
					score += 10
					break
				}
				if strings.Contains(strings.ToLower(docAuthor), authorLower) {
					score += 5
					break
				}
			}
		}
		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score++
		}
		if score > bestScore {
			bestScore = score
			best = doc
		}
	}
	return best
}

// NormalizeISBN strips separators and rejects anything that is not 10 or
// 13 characters long.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear pulls a plausible 4-digit year out of a free-form date.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}
	return 0
}

// OpenLibrary response shapes.

type openLibraryEdition struct {
	Key           string      `json:"key"`
	Title         string      `json:"title"`
	Authors       []authorRef `json:"authors"`
	Publishers    []string    `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages int         `json:"number_of_pages"`
	Description   any         `json:"description"`
	Subjects      []string    `json:"subjects"`
}

type authorRef struct {
	Key string `json:"key"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	Subject          []string `json:"subject"`
}
