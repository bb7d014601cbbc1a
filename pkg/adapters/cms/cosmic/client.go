// Package cosmic implements the object store over the Cosmic headless CMS
// REST API. One Client is built at process start and shared by every request.
package cosmic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/pkg/errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
)

const DefaultAPIURL = "https://api.cosmicjs.com/v3"

// Config holds the bucket-scoped credentials.
type Config struct {
	APIURL     string
	BucketSlug string
	ReadKey    string
	WriteKey   string
	// Timeout of zero keeps the transport default.
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

var _ ports.ObjectStore = (*Client)(nil)

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type listResponse struct {
	Objects []domain.Object `json:"objects"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Skip    int             `json:"skip"`
}

type objectResponse struct {
	Object *domain.Object `json:"object"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cosmic: unexpected status %d: %s", e.Status, e.Body)
}

func (c *Client) Find(ctx context.Context, q domain.Query) ([]domain.Object, error) {
	var out listResponse
	if err := c.get(ctx, q, &out); err != nil {
		return nil, err
	}
	if out.Objects == nil {
		return []domain.Object{}, nil
	}
	return out.Objects, nil
}

func (c *Client) FindOne(ctx context.Context, q domain.Query) (*domain.Object, error) {
	q.Limit = 1
	var out listResponse
	if err := c.get(ctx, q, &out); err != nil {
		return nil, err
	}
	if len(out.Objects) == 0 {
		return nil, domain.NewNotFound("object")
	}
	return &out.Objects[0], nil
}

func (c *Client) UpdateOne(ctx context.Context, id string, metadata map[string]any) (*domain.Object, error) {
	if id == "" {
		return nil, goerrors.New("object id is required", goerrors.CategoryBadInput)
	}
	body, err := json.Marshal(map[string]any{"metadata": metadata})
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot encode patch for object %q", id)
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/objects/%s", c.cfg.APIURL, url.PathEscape(c.cfg.BucketSlug), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot build update request for object %q", id)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.WriteKey)

	var out objectResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Object == nil {
		return nil, domain.NewNotFound("object")
	}
	return out.Object, nil
}

func (c *Client) get(ctx context.Context, q domain.Query, out any) error {
	endpoint := fmt.Sprintf("%s/buckets/%s/objects?%s", c.cfg.APIURL, url.PathEscape(c.cfg.BucketSlug), c.values(q).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "Cannot build query for type %q", q.Type)
	}
	return c.do(req, out)
}

func (c *Client) values(q domain.Query) url.Values {
	filter := map[string]string{}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Slug != "" {
		filter["slug"] = q.Slug
	}
	if q.ID != "" {
		filter["id"] = q.ID
	}
	encoded, _ := json.Marshal(filter)

	v := url.Values{}
	v.Set("query", string(encoded))
	v.Set("read_key", c.cfg.ReadKey)
	if len(q.Props) > 0 {
		v.Set("props", strings.Join(q.Props, ","))
	}
	if q.Depth > 0 {
		v.Set("depth", strconv.Itoa(q.Depth))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "Cannot reach cosmic at %q", req.URL.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewNotFound("object")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "Cannot decode cosmic response from %q", req.URL.Path)
	}
	return nil
}
