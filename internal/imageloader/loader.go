// Package imageloader fetches remote images and substitutes a generated
// placeholder whenever the fetch or decode fails.
package imageloader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/gabriel-vasile/mimetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

const (
	minSide = 16
	maxSide = 2000

	maxCachedPlaceholders = 256
	// maxAltRunes bounds placeholder labels and with them the cache key space.
	maxAltRunes = 80
)

// DefaultHosts are the image hosts the loader will fetch from.
var DefaultHosts = []string{"source.unsplash.com", "images.unsplash.com"}

// Image is the result of a load. Placeholder is set when Data was generated
// locally instead of fetched.
type Image struct {
	Data        []byte
	ContentType string
	Placeholder bool
}

// Config tunes a Loader.
type Config struct {
	Timeout      time.Duration
	MaxBytes     int64
	AllowedHosts []string
}

// Loader fetches images and never fails: any problem yields a placeholder.
type Loader struct {
	client   *http.Client
	maxBytes int64
	hosts    map[string]bool

	mu           sync.Mutex
	placeholders map[string][]byte
	// renders collapses concurrent draws of one placeholder.
	renders singleflight.Group
	draw    func(alt string, w, h int) ([]byte, error)
}

// New returns a Loader. A nil client uses http.DefaultClient's transport
// with cfg.Timeout.
func New(client *http.Client, cfg Config) *Loader {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 << 20
	}
	if cfg.AllowedHosts == nil {
		cfg.AllowedHosts = DefaultHosts
	}
	hosts := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		hosts[strings.ToLower(h)] = true
	}
	return &Loader{
		client:       client,
		maxBytes:     cfg.MaxBytes,
		hosts:        hosts,
		placeholders: make(map[string][]byte),
		draw:         drawPlaceholder,
	}
}

// SourceURL turns a catalog image reference into a fetchable URL. Absolute
// http(s) URLs pass through; anything else is treated as a search query.
func SourceURL(ref string, w, h int) string {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return ref
	}
	return fmt.Sprintf("https://source.unsplash.com/%dx%d/?%s", w, h, url.QueryEscape(ref))
}

// Load fetches src, falling back to a w×h placeholder labelled alt.
func (l *Loader) Load(ctx context.Context, src, alt string, w, h int) Image {
	data, ctype, err := l.fetch(ctx, src)
	if err != nil {
		log.Printf("imageloader: %s: %v", src, err)
		return l.Placeholder(alt, w, h)
	}
	return Image{Data: data, ContentType: ctype}
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, "", fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !l.hosts[strings.ToLower(u.Hostname())] {
		return nil, "", fmt.Errorf("host %q not allowed", u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", l.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", fmt.Errorf("not an image: %s", mt.String())
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", mt.String(), err)
	}
	return data, mt.String(), nil
}

// Placeholder renders a deterministic PNG with alt centred on a dark panel.
// Long labels are cut to maxAltRunes.
func (l *Loader) Placeholder(alt string, w, h int) Image {
	w, h = clampSide(w), clampSide(h)
	alt = clampAlt(alt)
	key := fmt.Sprintf("%dx%d:%s", w, h, alt)

	l.mu.Lock()
	data, ok := l.placeholders[key]
	l.mu.Unlock()
	if !ok {
		v, _, _ := l.renders.Do(key, func() (any, error) {
			data, err := l.draw(alt, w, h)
			if err != nil {
				// only reachable if the embedded font is corrupt
				log.Printf("imageloader: drawing placeholder: %v", err)
				data = blankPNG(w, h)
			}
			l.mu.Lock()
			if len(l.placeholders) >= maxCachedPlaceholders {
				l.placeholders = make(map[string][]byte)
			}
			l.placeholders[key] = data
			l.mu.Unlock()
			return data, nil
		})
		data = v.([]byte)
	}
	return Image{Data: data, ContentType: "image/png", Placeholder: true}
}

func clampAlt(alt string) string {
	r := []rune(strings.TrimSpace(alt))
	if len(r) <= maxAltRunes {
		return string(r)
	}
	return string(r[:maxAltRunes-1]) + "…"
}

func drawPlaceholder(alt string, w, h int) ([]byte, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	size := float64(h) / 14
	if size < 10 {
		size = 10
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	dc := gg.NewContext(w, h)
	dc.SetRGB255(24, 24, 27)
	dc.Clear()

	dc.SetRGBA255(255, 255, 255, 25)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(w)-2, float64(h)-2)
	dc.Stroke()
	dc.DrawLine(0, 0, float64(w), float64(h))
	dc.DrawLine(float64(w), 0, 0, float64(h))
	dc.Stroke()

	dc.SetFontFace(face)
	dc.SetRGBA255(255, 255, 255, 153)
	dc.DrawStringWrapped(alt, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w)*0.8, 1.4, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func blankPNG(w, h int) []byte {
	dc := gg.NewContext(w, h)
	dc.SetRGB255(24, 24, 27)
	dc.Clear()
	var buf bytes.Buffer
	_ = dc.EncodePNG(&buf)
	return buf.Bytes()
}

func clampSide(v int) int {
	if v < minSide {
		return minSide
	}
	if v > maxSide {
		return maxSide
	}
	return v
}
