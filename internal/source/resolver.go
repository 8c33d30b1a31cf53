package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Resolver turns input references into local files and stores output files
// at output references. Supported schemes:
//   - plain filesystem paths and file://path
//   - http:// and https:// URLs (input only, downloaded to temp)
//   - s3://bucket/key (AWS SDK v2, optional passphrase decryption)
type Resolver struct {
	httpClient   *http.Client
	s3Passphrase string
}

// NewResolver builds a Resolver. httpTimeout bounds each HTTP download;
// s3Passphrase, when non-empty, is used to decrypt encrypted S3 objects.
func NewResolver(httpTimeout time.Duration, s3Passphrase string) *Resolver {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &Resolver{
		httpClient:   &http.Client{Timeout: httpTimeout},
		s3Passphrase: s3Passphrase,
	}
}

// Kind classifies a reference.
type Kind string

const (
	KindFile Kind = "file"
	KindHTTP Kind = "http"
	KindS3   Kind = "s3"
)

// KindOf reports how a reference will be resolved.
func KindOf(ref string) Kind {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		return KindS3
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return KindHTTP
	default:
		return KindFile
	}
}

// Resolve returns a local path for ref plus a cleanup function for any
// temporary file it created. Cleanup is always non-nil.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, func(), error) {
	// Strip an optional #page fragment from URL-shaped refs. Plain paths
	// may legitimately contain '#'.
	if strings.Contains(ref, "://") {
		if i := strings.Index(ref, "#"); i >= 0 {
			ref = ref[:i]
		}
	}

	noop := func() {}

	switch KindOf(ref) {
	case KindS3:
		path, err := r.downloadS3ToTemp(ctx, ref)
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	case KindHTTP:
		path, err := r.downloadHTTPToTemp(ctx, ref)
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	default:
		path := strings.TrimPrefix(ref, "file://")
		if _, err := os.Stat(path); err != nil {
			return "", noop, fmt.Errorf("input not accessible: %w", err)
		}
		return path, noop, nil
	}
}

// Store places the file at localPath at the output reference. Local refs are
// a rename/copy, s3:// refs are uploaded.
func (r *Resolver) Store(ctx context.Context, localPath, ref string) error {
	switch KindOf(ref) {
	case KindS3:
		return r.uploadS3(ctx, localPath, ref)
	case KindHTTP:
		return fmt.Errorf("http output refs are not supported: %s", ref)
	default:
		dst := strings.TrimPrefix(ref, "file://")
		if dst == localPath {
			return nil
		}
		return copyFile(localPath, dst)
	}
}

func (r *Resolver) downloadHTTPToTemp(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}
	f, err := os.CreateTemp("", "bookocr-in-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	log.Debug().Str("url", url).Int64("bytes", n).Msg("downloaded http input to temp")
	return f.Name(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
