//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Object store staging.
//
// Inputs arrive and outputs leave as S3 objects. Uploaded files carry the
// job's descriptive properties as object metadata and its tags as S3 object
// tags, so downstream applets can find files without a separate index.
//
package stage

import (
	"context"
	"net/url"
	"os"
	"path"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const UPLOAD_CONCURRENCY = 4

// Object describes one file to upload: where it goes, what it is called,
// and the metadata attached to it.
type Object struct {
	Key        string
	LocalPath  string
	Properties map[string]string
	Tags       []string
}

type Store struct {
	bucket     string
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
}

func NewStore(bucket string, region string, endpoint string) *Store {
	self := &Store{}
	self.bucket = bucket

	config := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		config = config.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess := session.Must(session.NewSession(config))
	self.uploader = s3manager.NewUploader(sess)
	self.downloader = s3manager.NewDownloader(sess)
	return self
}

func (self *Store) Bucket() string {
	return self.bucket
}

// Download fetches an object into dstDir, named after the last element of
// its key, and returns the local path.
func (self *Store) Download(ctx context.Context, key string, dstDir string) (string, error) {
	dstPath := path.Join(dstDir, path.Base(key))
	fd, err := os.Create(dstPath)
	if err != nil {
		return "", errors.Wrapf(err, "stage: could not create file for download of %s", key)
	}
	defer fd.Close()

	numBytes, err := self.downloader.DownloadWithContext(ctx, fd, &s3.GetObjectInput{
		Bucket: aws.String(self.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Wrapf(err, "stage: download of s3://%s/%s failed", self.bucket, key)
	}
	core.LogInfo("stage", "Downloaded s3://%s/%s (%s)", self.bucket, key,
		humanize.Bytes(uint64(numBytes)))
	return dstPath, nil
}

// Upload stores one local file under obj.Key with its properties as object
// metadata and its tags as S3 object tags.
func (self *Store) Upload(ctx context.Context, obj *Object) error {
	fd, err := os.Open(obj.LocalPath)
	if err != nil {
		return errors.Wrapf(err, "stage: could not open %s for upload", obj.LocalPath)
	}
	defer fd.Close()

	metadata := map[string]*string{}
	for key, value := range obj.Properties {
		metadata[key] = aws.String(value)
	}

	input := &s3manager.UploadInput{
		Bucket:   aws.String(self.bucket),
		Key:      aws.String(obj.Key),
		Body:     fd,
		Metadata: metadata,
	}
	if len(obj.Tags) > 0 {
		input.Tagging = aws.String(encodeTags(obj.Tags))
	}

	if _, err := self.uploader.UploadWithContext(ctx, input); err != nil {
		return errors.Wrapf(err, "stage: upload of %s to s3://%s/%s failed",
			obj.LocalPath, self.bucket, obj.Key)
	}
	core.LogInfo("stage", "Uploaded %s to s3://%s/%s", obj.LocalPath, self.bucket, obj.Key)
	return nil
}

// UploadAll uploads a set of objects concurrently and fails on the first
// error.
func (self *Store) UploadAll(ctx context.Context, objs []*Object) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(UPLOAD_CONCURRENCY)
	for _, obj := range objs {
		obj := obj
		group.Go(func() error {
			return self.Upload(ctx, obj)
		})
	}
	return group.Wait()
}

// S3 object tags are transmitted as URL-encoded key=value pairs. Bare tags
// get an empty value.
func encodeTags(tags []string) string {
	values := url.Values{}
	for _, tag := range tags {
		values.Set(tag, "")
	}
	return values.Encode()
}
