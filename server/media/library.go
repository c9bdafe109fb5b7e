package media

import (
	"context"
	"encoding/json"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
)

const (
	ManifestFilename = "media-manifest.json"
	CaptionsFilename = "captions.generated.json"
)

// Library is the page-facing view of the media collection.
// It is never consulted when authorizing a request, or when serving a file.
type Library struct {
	log          logs.Log
	store        storage.Storage
	manifestPath string
	captionsPath string
	ttl          time.Duration
	now          func() time.Time

	lock       sync.Mutex
	items      []Item
	itemsAt    time.Time
	captions   CaptionMap
	captionsAt time.Time
}

// NewLibrary creates a library that falls back to listing store when there is no usable manifest.
// Results are cached for ttl.
func NewLibrary(log logs.Log, store storage.Storage, manifestPath, captionsPath string, ttl time.Duration) *Library {
	return &Library{
		log:          log,
		store:        store,
		manifestPath: manifestPath,
		captionsPath: captionsPath,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Items returns all media, sorted by date and index.
// The returned slice is shared, so callers must not modify it.
func (l *Library) Items(ctx context.Context) ([]Item, error) {
	l.lock.Lock()
	if l.items != nil && l.now().Sub(l.itemsAt) < l.ttl {
		items := l.items
		l.lock.Unlock()
		return items, nil
	}
	l.lock.Unlock()

	items, err := l.loadItems(ctx)
	if err != nil {
		return nil, err
	}

	l.lock.Lock()
	l.items = items
	l.itemsAt = l.now()
	l.lock.Unlock()
	return items, nil
}

func (l *Library) loadItems(ctx context.Context) ([]Item, error) {
	if items, err := ReadManifest(l.manifestPath); err == nil {
		return items, nil
	} else if !os.IsNotExist(err) {
		l.log.Warnf("Ignoring media manifest %v: %v", l.manifestPath, err)
	}

	names, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	items := ScanItems(names)
	l.log.Infof("No media manifest. Found %v items in storage", len(items))
	return items, nil
}

// ReadManifest loads a manifest file written by the manifest tool (a JSON array of items).
func ReadManifest(filename string) ([]Item, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseManifest(raw)
}

// ParseManifest decodes a manifest, filling in missing src paths, and sorts the result.
func ParseManifest(raw []byte) ([]Item, error) {
	items := []Item{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	for i := range items {
		if items[i].Src == "" {
			items[i].Src = PublicSrc(items[i].Filename)
		} else if strings.HasPrefix(items[i].Src, "/api/media/") {
			items[i].Src = "/media/" + strings.TrimPrefix(items[i].Src, "/api/media/")
		}
	}
	SortItems(items)
	return items, nil
}

// Timeline groups all items by date
func (l *Library) Timeline(ctx context.Context) ([]TimelineGroup, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByDate(items), nil
}

func (l *Library) Stats(ctx context.Context) (Stats, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(items), nil
}

// Photos returns the most recent n images, newest first
func (l *Library) Photos(ctx context.Context, n int) ([]Item, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	photos := []Item{}
	for _, item := range items {
		if item.Kind == KindImage {
			photos = append(photos, item)
		}
	}
	if len(photos) > n {
		photos = photos[len(photos)-n:]
	}
	slices.Reverse(photos)
	return photos, nil
}

// Captions returns the caption map. A missing or broken caption file yields an empty map.
func (l *Library) Captions() CaptionMap {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.captions != nil && l.now().Sub(l.captionsAt) < l.ttl {
		return l.captions
	}
	captions := CaptionMap{}
	if raw, err := os.ReadFile(l.captionsPath); err == nil {
		if parsed, err := ParseCaptions(raw); err == nil {
			captions = parsed
		} else {
			l.log.Warnf("Ignoring caption file %v: %v", l.captionsPath, err)
		}
	}
	l.captions = captions
	l.captionsAt = l.now()
	return captions
}
