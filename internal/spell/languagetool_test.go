package spell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLanguageToolCorrect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("language"); got != "es" {
			t.Errorf("language = %q, want es", got)
		}
		if got := r.PostForm.Get("text"); got != "una palabr mal" {
			t.Errorf("text = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"offset":4,"length":6,"replacements":[{"value":"palabra"}]}]}`))
	}))
	defer srv.Close()

	lt := NewLanguageTool(srv.URL, "es", 5*time.Second)
	got, err := lt.Correct(context.Background(), "una palabr mal")
	if err != nil {
		t.Fatal(err)
	}
	if got != "una palabra mal" {
		t.Errorf("got %q, want %q", got, "una palabra mal")
	}
}

func TestLanguageToolServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	lt := NewLanguageTool(srv.URL, "es", 5*time.Second)
	if _, err := lt.Correct(context.Background(), "texto"); err == nil {
		t.Error("500 response should surface as error")
	}
}

func TestLanguageToolUnreachable(t *testing.T) {
	lt := NewLanguageTool("http://127.0.0.1:1/v2/check", "es", 500*time.Millisecond)
	if _, err := lt.Correct(context.Background(), "texto"); err == nil {
		t.Error("unreachable server should surface as error")
	}
}

func TestApplyMatches(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		matches []ltMatch
		want    string
	}{
		{
			name: "no matches",
			text: "sin cambios",
			want: "sin cambios",
		},
		{
			name: "single replacement",
			text: "la kasa azul",
			matches: []ltMatch{
				{Offset: 3, Length: 4, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "casa"}}},
			},
			want: "la casa azul",
		},
		{
			name: "rune offsets with accents",
			text: "el niño cantava",
			matches: []ltMatch{
				{Offset: 8, Length: 7, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "cantaba"}}},
			},
			want: "el niño cantaba",
		},
		{
			name: "two ordered replacements",
			text: "uno ddos tres kuatro",
			matches: []ltMatch{
				{Offset: 4, Length: 4, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "dos"}}},
				{Offset: 14, Length: 6, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "cuatro"}}},
			},
			want: "uno dos tres cuatro",
		},
		{
			name: "match without suggestion is skipped",
			text: "palabra rara",
			matches: []ltMatch{
				{Offset: 8, Length: 4},
			},
			want: "palabra rara",
		},
		{
			name: "out of range match is skipped",
			text: "corto",
			matches: []ltMatch{
				{Offset: 3, Length: 10, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "x"}}},
			},
			want: "corto",
		},
		{
			name: "overlapping second match is skipped",
			text: "abcdef",
			matches: []ltMatch{
				{Offset: 0, Length: 4, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "X"}}},
				{Offset: 2, Length: 2, Replacements: []struct {
					Value string `json:"value"`
				}{{Value: "Y"}}},
			},
			want: "Xef",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := applyMatches(c.text, c.matches); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}
