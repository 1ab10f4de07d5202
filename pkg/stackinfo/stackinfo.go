// Package stackinfo discovers the lab bucket and records it as a one-key
// JSON document.
//
// A run is one bucket listing, one filter-and-select pass, and one write to
// the output file followed by one write to stdout. Nothing is written unless
// a bucket was selected.
package stackinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/3leaps/stackinfo/pkg/output"
	"github.com/3leaps/stackinfo/pkg/provider"
)

// DefaultOutputPath is the file written relative to the working directory.
const DefaultOutputPath = "stack-info.json"

// BucketKey is the only key in a StackInfo document.
const BucketKey = "S3Bucket"

// StackInfo is the result document.
type StackInfo struct {
	S3Bucket string `json:"S3Bucket"`
}

// Selector picks one bucket name from a listing.
type Selector interface {
	Select(names []string) (string, error)
}

// Render returns {"S3Bucket": "<name>"} with a single space after the
// colon. The output depends only on the bucket name.
//
// This is not a json.Marshaler: encoding/json compacts marshaler output,
// which would drop the space.
func (s StackInfo) Render() ([]byte, error) {
	name, err := json.Marshal(s.S3Bucket)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(BucketKey)+len(name)+6)
	buf = append(buf, `{"`...)
	buf = append(buf, BucketKey...)
	buf = append(buf, `": `...)
	buf = append(buf, name...)
	buf = append(buf, '}')
	return buf, nil
}

// Discover lists buckets once and selects one name.
func Discover(ctx context.Context, lister provider.BucketLister, sel Selector) (*StackInfo, error) {
	buckets, err := lister.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	name, err := sel.Select(provider.Names(buckets))
	if err != nil {
		return nil, fmt.Errorf("select bucket: %w", err)
	}

	return &StackInfo{S3Bucket: name}, nil
}

// Publish writes info to path, then echoes the same JSON plus a newline to
// stdout. The file is written first so a filesystem fault leaves stdout
// untouched.
func Publish(info *StackInfo, path string, stdout io.Writer) error {
	data, err := info.Render()
	if err != nil {
		return fmt.Errorf("encode stack info: %w", err)
	}

	if err := output.WriteFile(path, data); err != nil {
		return err
	}

	return output.WriteLine(stdout, data)
}

// Run discovers the bucket and publishes the result.
func Run(ctx context.Context, lister provider.BucketLister, sel Selector, path string, stdout io.Writer) (*StackInfo, error) {
	info, err := Discover(ctx, lister, sel)
	if err != nil {
		return nil, err
	}

	if err := Publish(info, path, stdout); err != nil {
		return nil, err
	}

	return info, nil
}
