package source

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

// gcmMagic marks passphrase-encrypted objects: 8-byte magic, 16-byte salt,
// GCM nonce, ciphertext.
const gcmMagic = "GCM3NCR0"

const (
	gcmSaltLen    = 16
	gcmIterations = 100_000
	gcmKeyLen     = 32
)

// ParseS3Ref splits s3://bucket/key into its parts.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	path := strings.TrimPrefix(ref, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return "", "", fmt.Errorf("invalid s3 ref: %s", ref)
	}
	return path[:slash], path[slash+1:], nil
}

func (r *Resolver) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// HeadBucket verifies the bucket behind an s3:// ref is reachable with the
// ambient AWS credentials.
func (r *Resolver) HeadBucket(ctx context.Context, ref string) error {
	bucket, _, err := ParseS3Ref(ref)
	if err != nil {
		return err
	}
	cli, err := r.s3Client(ctx)
	if err != nil {
		return err
	}
	if _, err := cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("s3 head %s: %w", bucket, err)
	}
	return nil
}

func (r *Resolver) downloadS3ToTemp(ctx context.Context, ref string) (string, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return "", err
	}

	cli, err := r.s3Client(ctx)
	if err != nil {
		return "", err
	}

	out, err := cli.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return "", fmt.Errorf("s3 get %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read s3 object: %w", err)
	}

	if isGCMPayload(data) {
		if r.s3Passphrase == "" {
			return "", fmt.Errorf("s3 object %s is encrypted and no passphrase is configured", ref)
		}
		data, err = decryptGCM(data, r.s3Passphrase)
		if err != nil {
			return "", fmt.Errorf("decrypt s3 object: %w", err)
		}
		log.Debug().Str("key", key).Msg("decrypted s3 object")
	}

	f, err := os.CreateTemp("", "bookocr-s3-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int("bytes", len(data)).Msg("downloaded s3 input to temp")
	return f.Name(), nil
}

func (r *Resolver) uploadS3(ctx context.Context, localPath, ref string) error {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return err
	}

	cli, err := r.s3Client(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	_, err = cli.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", ref, err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Int("bytes", len(data)).Msg("uploaded output to s3")
	return nil
}

func isGCMPayload(data []byte) bool {
	return len(data) > len(gcmMagic) && string(data[:len(gcmMagic)]) == gcmMagic
}

func gcmFromPassphrase(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, gcmIterations, gcmKeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func decryptGCM(data []byte, passphrase string) ([]byte, error) {
	rest := data[len(gcmMagic):]
	if len(rest) < gcmSaltLen {
		return nil, fmt.Errorf("encrypted payload too short")
	}
	salt := rest[:gcmSaltLen]
	rest = rest[gcmSaltLen:]

	gcm, err := gcmFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted payload missing nonce")
	}
	nonce := rest[:gcm.NonceSize()]
	ciphertext := rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm open: %w", err)
	}
	return plain, nil
}

// encryptGCM produces the payload format decryptGCM accepts. Kept for
// writing encrypted fixtures and future encrypted uploads.
func encryptGCM(plain []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, gcmSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	gcm, err := gcmFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(gcmMagic)+len(salt)+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, gcmMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plain, nil)
	return out, nil
}
