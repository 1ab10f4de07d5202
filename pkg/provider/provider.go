// Package provider defines abstractions for cloud storage bucket discovery.
//
// Providers expose the account-level listing surface only. Authentication
// uses SDK default credential chains - providers should not implement custom
// auth logic.
package provider

import (
	"context"
	"time"
)

// BucketLister lists the storage buckets visible to the caller.
//
// Implementations should:
//   - Use SDK default credential chains (AWS default config)
//   - Preserve the order the provider returns
//   - Issue a single listing request per call
type BucketLister interface {
	// ListBuckets returns the buckets visible to the configured credentials.
	ListBuckets(ctx context.Context) ([]BucketSummary, error)
}

// BucketSummary contains the metadata returned from a bucket listing.
type BucketSummary struct {
	// Name is the provider-assigned bucket name.
	Name string

	// CreationDate is when the bucket was created, if reported.
	CreationDate time.Time

	// Region is the bucket region, if reported by the listing.
	Region string
}

// Names returns the bucket names in listing order.
func Names(buckets []BucketSummary) []string {
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names
}

// ProviderType identifies a cloud storage provider.
type ProviderType string

const (
	// ProviderS3 represents AWS S3 or S3-compatible storage.
	ProviderS3 ProviderType = "s3"
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}
