package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/lease-extractor/internal/llm"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth = %q", got)
		}
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Model != "gpt-3.5-turbo" || body.Temperature != 0.1 || body.MaxTokens != 5000 {
			t.Errorf("sampling = %+v", body)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "user prompt" {
			t.Errorf("messages = %+v", body.Messages)
		}
		_, _ = w.Write([]byte(`{"model":"gpt-3.5-turbo-0125","choices":[{"message":{"role":"assistant","content":"{\"rooms\":\"2\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Temperature: 0.1}, nil)
	got, err := c.Complete(context.Background(), llm.CompletionRequest{System: "sys", User: "user prompt"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != `{"rooms":"2"}` || got.Model != "gpt-3.5-turbo-0125" || got.FinishReason != "stop" {
		t.Errorf("completion = %+v", got)
	}
	if c.Provider() != "openai" || c.Model() != "gpt-3.5-turbo" {
		t.Errorf("provider/model = %s/%s", c.Provider(), c.Model())
	}
}

func TestCompleteErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"no choices", 200, `{"choices":[]}`, func(err error) bool { return errors.Is(err, ErrNoChoices) }},
		{"bad json", 200, `not json`, func(err error) bool { return err != nil }},
		{"unauthorized", 401, `{"error":{"message":"bad key"}}`, func(err error) bool {
			var se *llm.StatusError
			return errors.As(err, &se) && se.StatusCode == 401
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			cl := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := cl.Complete(context.Background(), llm.CompletionRequest{User: "x"})
			if !c.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
