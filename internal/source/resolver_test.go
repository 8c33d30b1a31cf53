package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		ref  string
		want Kind
	}{
		{"book.pdf", KindFile},
		{"/data/book.pdf", KindFile},
		{"file:///data/book.pdf", KindFile},
		{"http://example.com/book.pdf", KindHTTP},
		{"https://example.com/book.pdf", KindHTTP},
		{"s3://bucket/books/one.pdf", KindS3},
	}
	for _, c := range cases {
		if got := KindOf(c.ref); got != c.want {
			t.Errorf("KindOf(%q) = %q, want %q", c.ref, got, c.want)
		}
	}
}

func TestParseS3Ref(t *testing.T) {
	bucket, key, err := ParseS3Ref("s3://scans/books/quijote.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "scans" || key != "books/quijote.pdf" {
		t.Errorf("got %q/%q", bucket, key)
	}

	for _, bad := range []string{"s3://", "s3://bucketonly", "s3://bucket/"} {
		if _, _, err := ParseS3Ref(bad); err == nil {
			t.Errorf("ParseS3Ref(%q) should fail", bad)
		}
	}
}

func TestResolveLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(time.Second, "")
	got, cleanup, err := r.Resolve(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if got != path {
		t.Errorf("local resolve = %q, want %q", got, path)
	}

	// file:// prefix and #fragment are both stripped
	got, cleanup, err = r.Resolve(context.Background(), "file://"+path+"#page=3")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if got != path {
		t.Errorf("file:// resolve = %q, want %q", got, path)
	}

	if _, _, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("missing file should fail to resolve")
	}
}

func TestResolveLocalFileWithHashInName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomo #1.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(time.Second, "")
	got, cleanup, err := r.Resolve(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if got != path {
		t.Errorf("resolve = %q, want %q", got, path)
	}
}

func TestResolveHTTP(t *testing.T) {
	body := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/missing.pdf" {
			http.NotFound(w, req)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	r := NewResolver(5*time.Second, "")
	path, cleanup, err := r.Resolve(context.Background(), srv.URL+"/book.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(body) {
		t.Errorf("downloaded %q, want %q", data, body)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cleanup should remove the temp download")
	}

	if _, _, err := r.Resolve(context.Background(), srv.URL+"/missing.pdf"); err == nil {
		t.Error("404 should fail to resolve")
	}
}

func TestStoreLocal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.7 result"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(time.Second, "")
	dst := filepath.Join(dir, "final.pdf")
	if err := r.Store(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.7 result" {
		t.Errorf("stored %q", data)
	}

	// Storing onto itself is a no-op.
	if err := r.Store(context.Background(), src, src); err != nil {
		t.Errorf("self store: %v", err)
	}

	if err := r.Store(context.Background(), src, "http://example.com/out.pdf"); err == nil {
		t.Error("http output should be rejected")
	}
}

func TestGCMRoundTrip(t *testing.T) {
	plain := []byte("%PDF-1.4 secret scan")
	enc, err := encryptGCM(plain, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !isGCMPayload(enc) {
		t.Fatal("encrypted payload missing magic")
	}

	dec, err := decryptGCM(enc, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != string(plain) {
		t.Errorf("round trip = %q, want %q", dec, plain)
	}

	if _, err := decryptGCM(enc, "wrong"); err == nil {
		t.Error("wrong passphrase should fail")
	}
	if isGCMPayload(plain) {
		t.Error("plain PDF misdetected as encrypted")
	}
}
