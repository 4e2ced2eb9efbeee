package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGetJSONDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		io.WriteString(w, `{"success":true,"data":{"name":"Everest Base Camp"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL).WithToken("tok")
	var out struct {
		Name string `json:"name"`
	}
	if _, err := c.GetJSON(context.Background(), "/trek/specific/ebc", url.Values{"page": {"2"}}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "Everest Base Camp" {
		t.Fatalf("unexpected name %q", out.Name)
	}
}

func TestSuccessFalseCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"Slug already taken"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Delete(context.Background(), "/destination/delete/1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if got := Message(err, "fallback"); got != "Slug already taken" {
		t.Fatalf("expected server message, got %q", got)
	}
}

func TestServerErrorWithoutBodyUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetJSON(context.Background(), "/destinations", nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 *Error, got %v", err)
	}
	if got := Message(err, "Failed to load destinations"); got != "Failed to load destinations" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

type validationErr struct{}

func (validationErr) Error() string       { return "title: required" }
func (validationErr) UserMessage() string { return "Title is required" }

func TestMessagePrefersUserMessage(t *testing.T) {
	if got := Message(validationErr{}, "fallback"); got != "Title is required" {
		t.Fatalf("got %q", got)
	}
	if got := Message(errors.New("dial tcp: refused"), "Something went wrong"); got != "Something went wrong" {
		t.Fatalf("got %q", got)
	}
}

func TestSendFormMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("title") != "Pokhara" {
			t.Errorf("title = %q", r.FormValue("title"))
		}
		if r.FormValue("highlights") != `["Lakes","Paragliding"]` {
			t.Errorf("highlights = %q", r.FormValue("highlights"))
		}
		if r.FormValue("gallery") != "[]" {
			t.Errorf("nil slice should be sent as [], got %q", r.FormValue("gallery"))
		}
		files := r.MultipartForm.File["thumbnail"]
		if len(files) != 1 || files[0].Filename != "lake.jpg" {
			t.Errorf("unexpected files %+v", files)
		}
		if ct := files[0].Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("file content type = %q", ct)
		}
		io.WriteString(w, `{"success":true,"message":"Destination added"}`)
	}))
	defer srv.Close()

	fd := NewFormData()
	fd.Append("title", "Pokhara")
	if err := fd.AppendJSON("highlights", []string{"Lakes", "Paragliding"}); err != nil {
		t.Fatal(err)
	}
	var gallery []string
	if err := fd.AppendJSON("gallery", gallery); err != nil {
		t.Fatal(err)
	}
	fd.AppendFile("thumbnail", "lake.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff})

	env, err := New(srv.URL).SendForm(context.Background(), http.MethodPost, "/destination/add-dest", nil, fd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Message != "Destination added" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestQueryAppendedToPathWithQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("packageSlug") != "ebc" || r.URL.Query().Get("x") != "1" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	env, err := New(srv.URL).Do(context.Background(), http.MethodPost, "/itinerary/add?packageSlug=ebc", url.Values{"x": {"1"}}, nil, "")
	if err != nil || !env.Success {
		t.Fatalf("expected success on empty 204, got %v %+v", err, env)
	}
}

func TestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL).GetJSON(ctx, "/destinations", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
