package media

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Item is a single photo or video of the scrapbook
type Item struct {
	ID       string `json:"id"`       // YYYY-MM-DD-NNN
	Filename string `json:"filename"` // YYYY-MM-DD_NNN.ext
	Date     string `json:"date"`     // YYYY-MM-DD
	Index    int    `json:"index"`    // Sequence number within Date
	Kind     Kind   `json:"kind"`
	Src      string `json:"src"` // Public path, eg /media/2024-01-01_000.jpg
}

// TimelineGroup is all of the items of a single day
type TimelineGroup struct {
	Date  string `json:"date"`
	Items []Item `json:"items"`
}

// Stats is a summary of the whole library
type Stats struct {
	Total     int    `json:"total"`
	Photos    int    `json:"photos"`
	Videos    int    `json:"videos"`
	FirstDate string `json:"firstDate"`
	LastDate  string `json:"lastDate"`
}

var filenameRegex = regexp.MustCompile(`^(?P<date>\d{4}-\d{2}-\d{2})_(?P<index>\d{3})\.(?i:(?P<ext>jpg|jpeg|mp4))$`)

var (
	dateGroup  = filenameRegex.SubexpIndex("date")
	indexGroup = filenameRegex.SubexpIndex("index")
	extGroup   = filenameRegex.SubexpIndex("ext")
)

// IsValidFilename returns true if name is YYYY-MM-DD_NNN.{jpg|jpeg|mp4}.
// The extension is case insensitive.
func IsValidFilename(name string) bool {
	return filenameRegex.MatchString(name)
}

// ParseFilename returns the Item described by filename, or false if the name
// does not follow our naming convention.
func ParseFilename(filename string) (Item, bool) {
	m := filenameRegex.FindStringSubmatch(filename)
	if m == nil {
		return Item{}, false
	}
	index, _ := strconv.Atoi(m[indexGroup])
	kind := KindImage
	if strings.ToLower(m[extGroup]) == "mp4" {
		kind = KindVideo
	}
	return Item{
		ID:       fmt.Sprintf("%v-%03d", m[dateGroup], index),
		Filename: filename,
		Date:     m[dateGroup],
		Index:    index,
		Kind:     kind,
		Src:      PublicSrc(filename),
	}, true
}

// PublicSrc is the path under which pages refer to a media file
func PublicSrc(filename string) string {
	return "/media/" + url.PathEscape(filename)
}

// Extension returns the lowercase extension of filename, without the dot
func Extension(filename string) string {
	dot := strings.LastIndexByte(filename, '.')
	if dot == -1 {
		return ""
	}
	return strings.ToLower(filename[dot+1:])
}

// ContentType returns the MIME type we serve for the given extension
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case "mp4":
		return "video/mp4"
	default:
		return "image/jpeg"
	}
}

// SortItems orders by date, then by index
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Index < items[j].Index
	})
}

// ScanItems turns a directory listing into a sorted list of items, skipping any
// names that don't follow our naming convention.
func ScanItems(names []string) []Item {
	items := []Item{}
	for _, name := range names {
		if item, ok := ParseFilename(name); ok {
			items = append(items, item)
		}
	}
	SortItems(items)
	return items
}

// GroupByDate splits sorted items into one group per day
func GroupByDate(items []Item) []TimelineGroup {
	groups := []TimelineGroup{}
	byDate := map[string]int{}
	for _, item := range items {
		idx, ok := byDate[item.Date]
		if !ok {
			idx = len(groups)
			byDate[item.Date] = idx
			groups = append(groups, TimelineGroup{Date: item.Date})
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date < groups[j].Date
	})
	for i := range groups {
		SortItems(groups[i].Items)
	}
	return groups
}

// ComputeStats summarizes items, which must already be sorted
func ComputeStats(items []Item) Stats {
	s := Stats{Total: len(items)}
	for _, item := range items {
		if item.Kind == KindImage {
			s.Photos++
		}
	}
	s.Videos = s.Total - s.Photos
	if len(items) != 0 {
		s.FirstDate = items[0].Date
		s.LastDate = items[len(items)-1].Date
	}
	return s
}
