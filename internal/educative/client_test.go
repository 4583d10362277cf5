package educative

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCoursePage(t *testing.T) {
	var gotPath, gotWorkType, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWorkType = r.URL.Query().Get("work_type")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"components": []}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseOrigin: srv.URL, Token: "tok"})

	body, err := c.FetchCoursePage(context.Background(), "10370001", "4941429335392256", "5668600916475904")
	if err != nil {
		t.Fatalf("FetchCoursePage() error: %v", err)
	}

	if string(body) != `{"components": []}` {
		t.Errorf("body = %q, want raw JSON payload", body)
	}
	if gotPath != "/api/collection/10370001/4941429335392256/page/5668600916475904" {
		t.Errorf("path = %q, want collection page path", gotPath)
	}
	if gotWorkType != "collection" {
		t.Errorf("work_type = %q, want collection", gotWorkType)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", gotAuth)
	}
}

func TestFetchModulePage(t *testing.T) {
	var gotPath, gotWorkType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWorkType = r.URL.Query().Get("work_type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseOrigin: srv.URL})

	if _, err := c.FetchModulePage(context.Background(), "grokking", "intro"); err != nil {
		t.Fatalf("FetchModulePage() error: %v", err)
	}
	if gotPath != "/api/interview-prep/grokking/page/intro" {
		t.Errorf("path = %q, want interview-prep page path", gotPath)
	}
	if gotWorkType != "module" {
		t.Errorf("work_type = %q, want module", gotWorkType)
	}
}

func TestFetchErrors(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c := NewClient(ClientOptions{BaseOrigin: srv.URL})
		_, err := c.FetchModulePage(context.Background(), "x", "y")
		if !errors.Is(err, ErrBadStatus) {
			t.Errorf("err = %v, want ErrBadStatus", err)
		}
	})

	t.Run("empty response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := NewClient(ClientOptions{BaseOrigin: srv.URL})
		_, err := c.FetchModulePage(context.Background(), "x", "y")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("err = %v, want ErrEmptyResponse", err)
		}
	})
}
