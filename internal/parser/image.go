package parser

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ImageKind tags the outcome of an image search
type ImageKind int

const (
	NotFound ImageKind = iota
	InlineFound
	ExternalFound
)

func (k ImageKind) String() string {
	switch k {
	case InlineFound:
		return "inline"
	case ExternalFound:
		return "external"
	default:
		return "not_found"
	}
}

// DefaultImageMime is assumed when a payload carries no mime type
const DefaultImageMime = "image/png"

// ImageResult is the tagged result of FindImage. Data and MimeType are set
// for InlineFound, URL for ExternalFound.
type ImageResult struct {
	Kind     ImageKind
	Data     string
	MimeType string
	URL      string
	// Pass records which search stage produced the result (1..3), 0 when not found.
	Pass int
}

// Found reports whether an image was located
func (r ImageResult) Found() bool {
	return r.Kind != NotFound
}

// URI renders the result as a data URI or the external URL
func (r ImageResult) URI() string {
	switch r.Kind {
	case InlineFound:
		mime := r.MimeType
		if mime == "" {
			mime = DefaultImageMime
		}
		return "data:" + mime + ";base64," + r.Data
	case ExternalFound:
		return r.URL
	}
	return ""
}

var base64Charset = regexp.MustCompile(`^[A-Za-z0-9+/=\n\r]+$`)

// LooksLikeBase64Image accepts PNG/JPEG base64 signatures outright, otherwise
// requires a long string made only of base64 characters.
func LooksLikeBase64Image(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "iVBOR") || strings.HasPrefix(s, "/9j/") {
		return true
	}
	return len(s) > 500 && base64Charset.MatchString(s)
}

// FindImage locates an image in a generateContent response:
//  1. parts[1].inlineData (or inline_data)
//  2. every part in the order 1, 0, 2..n for inline data or an image URL
//  3. a recursive walk of the whole tree for a base64 image string
func FindImage(root any) ImageResult {
	parts := Parts(root)

	if len(parts) > 1 {
		if part, ok := Object(parts[1]); ok {
			if res, ok := inlineFromPart(part); ok {
				res.Pass = 1
				return res
			}
		}
	}

	for _, idx := range partOrder(len(parts)) {
		part, ok := Object(parts[idx])
		if !ok {
			continue
		}
		if res, ok := inlineFromPart(part); ok {
			res.Pass = 2
			return res
		}
		if u, ok := First(part, "imageUrl", "image_url"); ok {
			if s, ok := NonBlank(u); ok {
				return ImageResult{Kind: ExternalFound, URL: strings.TrimSpace(s), Pass: 2}
			}
		}
	}

	if res, ok := scanBase64(root); ok {
		res.Pass = 3
		return res
	}
	return ImageResult{Kind: NotFound}
}

func partOrder(n int) []int {
	order := make([]int, 0, n)
	if n > 1 {
		order = append(order, 1)
	}
	if n > 0 {
		order = append(order, 0)
	}
	for i := 2; i < n; i++ {
		order = append(order, i)
	}
	return order
}

func inlineFromPart(part map[string]any) (ImageResult, bool) {
	raw, ok := First(part, "inlineData", "inline_data")
	if !ok {
		return ImageResult{}, false
	}
	inline, ok := Object(raw)
	if !ok {
		return ImageResult{}, false
	}
	data, ok := inlineBase64(inline["data"])
	if !ok {
		return ImageResult{}, false
	}
	return ImageResult{Kind: InlineFound, Data: data, MimeType: mimeOf(inline)}, true
}

// inlineBase64 accepts a base64 string or an array of byte values
func inlineBase64(v any) (string, bool) {
	switch data := v.(type) {
	case string:
		data = strings.TrimSpace(data)
		return data, data != ""
	case []any:
		if len(data) == 0 {
			return "", false
		}
		buf := make([]byte, 0, len(data))
		for _, item := range data {
			switch n := item.(type) {
			case string:
				b, err := strconv.Atoi(n)
				if err != nil {
					return "", false
				}
				buf = append(buf, byte(b))
			default:
				b, ok := Int(n)
				if !ok {
					return "", false
				}
				buf = append(buf, byte(b))
			}
		}
		return base64.StdEncoding.EncodeToString(buf), true
	}
	return "", false
}

func mimeOf(obj map[string]any) string {
	if v, ok := First(obj, "mimeType", "mime_type"); ok {
		if s, ok := NonBlank(v); ok {
			return strings.TrimSpace(s)
		}
	}
	return DefaultImageMime
}

// scanBase64 walks the tree depth first with object keys in sorted order so
// the result does not depend on map iteration.
func scanBase64(node any) (ImageResult, bool) {
	switch n := node.(type) {
	case map[string]any:
		if s, ok := String(n["data"]); ok && LooksLikeBase64Image(s) {
			return ImageResult{Kind: InlineFound, Data: strings.TrimSpace(s), MimeType: mimeOf(n)}, true
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := n[k]
			if s, ok := v.(string); ok {
				if LooksLikeBase64Image(s) {
					return ImageResult{Kind: InlineFound, Data: strings.TrimSpace(s), MimeType: mimeOf(n)}, true
				}
				continue
			}
			if res, ok := scanBase64(v); ok {
				return res, true
			}
		}
	case []any:
		for _, item := range n {
			if res, ok := scanBase64(item); ok {
				return res, true
			}
		}
	case string:
		if LooksLikeBase64Image(n) {
			return ImageResult{Kind: InlineFound, Data: strings.TrimSpace(n), MimeType: DefaultImageMime}, true
		}
	}
	return ImageResult{}, false
}
