package cosmic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

func TestFindSendsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"objects":[{"id":"p1","slug":"home","title":"Home","metadata":{"page_url":"/"}}],"total":1}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, BucketSlug: "site", ReadKey: "rk"}, srv.Client())
	objects, err := c.Find(context.Background(), domain.Query{Type: domain.TypePage, Props: domain.DefaultProps, Depth: 2})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(objects) != 1 || objects[0].ID != "p1" {
		t.Fatalf("objects = %+v", objects)
	}

	if got.URL.Path != "/buckets/site/objects" {
		t.Errorf("path = %q", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("read_key") != "rk" || q.Get("depth") != "2" || q.Get("props") != "id,title,slug,metadata" {
		t.Errorf("query = %v", q)
	}
	var filter map[string]string
	if err := json.Unmarshal([]byte(q.Get("query")), &filter); err != nil || filter["type"] != domain.TypePage {
		t.Errorf("filter = %v (%v)", filter, err)
	}
}

func TestFindOneNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("expected limit=1, got %q", r.URL.Query().Get("limit"))
		}
		http.Error(w, `{"message":"No objects found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, BucketSlug: "site"}, srv.Client())
	obj, err := c.FindOne(context.Background(), domain.Query{Type: domain.TypePage, Slug: "missing"})
	if obj != nil {
		t.Fatalf("expected nil object, got %+v", obj)
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateOneSendsPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/buckets/site/objects/sec-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer wk" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Metadata map[string]any `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body.Metadata) != 1 || body.Metadata["section_label"] != "B" {
			t.Errorf("metadata = %v", body.Metadata)
		}
		io.WriteString(w, `{"object":{"id":"sec-1","metadata":{"section_label":"B"}}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, BucketSlug: "site", WriteKey: "wk"}, srv.Client())
	obj, err := c.UpdateOne(context.Background(), "sec-1", map[string]any{"section_label": "B"})
	if err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	if obj.ID != "sec-1" {
		t.Fatalf("object = %+v", obj)
	}
}

func TestServerErrorIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid read key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL, BucketSlug: "site"}, srv.Client())
	_, err := c.Find(context.Background(), domain.Query{Type: domain.TypeSection})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status error, got %v", err)
	}
	if domain.IsNotFound(err) {
		t.Fatal("401 must not be reported as not found")
	}
}
