// Package images lists the background images offered to the front end.
package images

import "context"

// Lister returns the URLs of the available background images.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// StaticLister serves a fixed URL list. Used when no S3 bucket is
// configured.
type StaticLister struct {
	urls []string
}

func NewStaticLister(urls []string) *StaticLister {
	return &StaticLister{urls: urls}
}

func (l *StaticLister) List(_ context.Context) ([]string, error) {
	out := make([]string, len(l.urls))
	copy(out, l.urls)
	return out, nil
}
