// Package reliability provides off-site backup of the local databases.
package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/config"
)

// BackupService uploads gzip snapshots of the portfolio database to
// S3-compatible storage and prunes old snapshots past the retention count.
type BackupService struct {
	client    *s3.Client
	bucket    string
	dbPath    string
	retention int
	log       zerolog.Logger
}

// NewBackupService creates a backup service, or nil when backups are not
// configured. A nil service is safe to skip at wiring time.
func NewBackupService(cfg *config.BackupConfig, dbPath string, log zerolog.Logger) (*BackupService, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
		}
		o.UsePathStyle = true
	})

	retention := cfg.Retention
	if retention <= 0 {
		retention = 14
	}

	return &BackupService{
		client:    client,
		bucket:    cfg.Bucket,
		dbPath:    dbPath,
		retention: retention,
		log:       log.With().Str("service", "backup").Logger(),
	}, nil
}

// Backup uploads one compressed snapshot and prunes old ones.
func (s *BackupService) Backup() error {
	data, err := os.ReadFile(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to read database for backup: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("failed to compress backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize backup archive: %w", err)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	key := fmt.Sprintf("backups/%s-%s.db.gz",
		filepath.Base(s.dbPath), time.Now().UTC().Format("20060102-150405"))

	contentType := "application/gzip"
	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
		Metadata: map[string]string{
			"sha256":       checksum,
			"uncompressed": fmt.Sprintf("%d", len(data)),
			"source":       filepath.Base(s.dbPath),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", key, err)
	}

	s.log.Info().
		Str("key", key).
		Int("bytes", buf.Len()).
		Str("sha256", checksum[:12]).
		Msg("Backup uploaded")

	return s.prune()
}

// prune deletes the oldest snapshots beyond the retention count.
func (s *BackupService) prune() error {
	prefix := "backups/"
	out, err := s.client.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return fmt.Errorf("failed to list backups for pruning: %w", err)
	}

	if len(out.Contents) <= s.retention {
		return nil
	}

	objects := out.Contents
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.Before(*objects[j].LastModified)
	})

	excess := objects[:len(objects)-s.retention]
	for _, obj := range excess {
		if _, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: &s.bucket,
			Key:    obj.Key,
		}); err != nil {
			s.log.Warn().Str("key", *obj.Key).Err(err).Msg("Failed to prune old backup")
			continue
		}
		s.log.Debug().Str("key", *obj.Key).Msg("Pruned old backup")
	}

	return nil
}
