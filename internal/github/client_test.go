package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithBaseURL("test-token", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL failed: %v", err)
	}
	return client
}

func TestClient_ListComments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/issues/42/comments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/owner/repo/issues/42/comments?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"id":1,"body":"first","created_at":"2026-01-01T00:00:00Z"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":2,"body":"second","created_at":"2026-01-02T00:00:00Z"}]`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))

	comments, nextPage, err := client.ListComments(context.Background(), "owner/repo", 42, 1)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != 1 || comments[0].Body != "first" {
		t.Errorf("page 1 = %+v", comments)
	}
	if nextPage != 2 {
		t.Fatalf("nextPage = %d, want 2", nextPage)
	}

	comments, nextPage, err = client.ListComments(context.Background(), "owner/repo", 42, nextPage)
	if err != nil {
		t.Fatalf("ListComments page 2 failed: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != 2 {
		t.Errorf("page 2 = %+v", comments)
	}
	if nextPage != 0 {
		t.Errorf("nextPage = %d, want 0 on the last page", nextPage)
	}
	if comments[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not mapped")
	}
}

func TestClient_CreateComment(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/owner/repo/issues/42/comments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var payload struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if payload.Body != "hello" {
			t.Errorf("body = %q, want hello", payload.Body)
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":777,"body":"hello"}`)
	}))

	id, err := client.CreateComment(context.Background(), "owner/repo", 42, "hello")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if id != 777 {
		t.Errorf("id = %d, want 777", id)
	}
}

func TestClient_DeleteComment(t *testing.T) {
	deleted := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/repos/owner/repo/issues/comments/99" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteComment(context.Background(), "owner/repo", 99); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	if !deleted {
		t.Error("delete endpoint never called")
	}
}

func TestClient_APIErrorPropagates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	}))

	if _, _, err := client.ListComments(context.Background(), "owner/repo", 42, 1); err == nil {
		t.Error("expected error from 401 response")
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		name    string
		wantErr bool
	}{
		{"owner/repo", "owner", "repo", false},
		{"owner", "", "", true},
		{"a/b/c", "", "", true},
		{"/repo", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		owner, name, err := splitRepo(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitRepo(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || name != tt.name {
			t.Errorf("splitRepo(%q) = (%q, %q), want (%q, %q)", tt.in, owner, name, tt.owner, tt.name)
		}
	}
}
