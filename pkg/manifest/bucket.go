package manifest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"art-showcase/pkg/models"
)

// Allowed image extensions
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// FromBucket lists the images stored under prefix and returns them as
// entries with public object URLs, in natural name order
func FromBucket(ctx context.Context, bucketName, prefix string) ([]models.ImageEntry, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	var names []string
	it := client.Bucket(bucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		obj, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucketName, prefix, err)
		}
		names = append(names, obj.Name)
	}
	return entriesFromObjects(bucketName, names), nil
}

// entriesFromObjects keeps image objects and titles them after their file name
func entriesFromObjects(bucketName string, names []string) []models.ImageEntry {
	var images []string
	for _, name := range names {
		if isImage(name) {
			images = append(images, name)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		return naturalLess(images[i], images[j])
	})

	entries := make([]models.ImageEntry, len(images))
	for i, name := range images {
		base := path.Base(name)
		entries[i] = models.ImageEntry{
			Image: objectURL(bucketName, name),
			Title: strings.TrimSuffix(base, path.Ext(base)),
		}
	}
	return entries
}

func isImage(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	ext := strings.ToLower(path.Ext(name))
	for _, allowed := range imageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func objectURL(bucketName, name string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucketName + "/" + name}
	return u.String()
}

// naturalLess compares strings treating runs of digits as numbers,
// so "img2" sorts before "img10"
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := digitPrefix(a), digitPrefix(b)
		if da > 0 && db > 0 {
			na := strings.TrimLeft(a[:da], "0")
			nb := strings.TrimLeft(b[:db], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = a[da:], b[db:]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func digitPrefix(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
