package httpchain_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adamwoolhether/httpchain"
	"github.com/adamwoolhether/httpchain/client"
	"github.com/adamwoolhether/httpchain/client/header"
)

func ExampleNew() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer ts.Close()

	c, err := httpchain.New(ts.URL)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer c.Close()

	type health struct {
		Status string `json:"status"`
	}

	req := client.Decode[health](c.Get(client.Path("health")))
	if err := req.Start(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	h, err := req.Wait()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(h.Status)
	// Output: ok
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HTTPCHAIN_TEST_BASE_URL", "https://api.example.com")
	t.Setenv("HTTPCHAIN_TEST_USER_AGENT", "env/1.0")

	c, err := httpchain.FromEnv("HTTPCHAIN_TEST")
	if err != nil {
		t.Fatalf("building from env: %v", err)
	}
	defer c.Close()

	if got := c.URL().String(); got != "https://api.example.com" {
		t.Errorf("exp base url from env, got %q", got)
	}
	if ua, _ := c.Header().Get(header.UserAgent); ua != "env/1.0" {
		t.Errorf("exp user agent from env, got %q", ua)
	}
}

func TestFromEnv_Missing(t *testing.T) {
	if _, err := httpchain.FromEnv("HTTPCHAIN_UNSET"); err == nil {
		t.Error("exp error when BASE_URL is not set")
	}
}
