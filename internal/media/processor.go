package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"bookreview/internal/apperror"
)

// PublicPrefix is the URL path stored images are served under.
const PublicPrefix = "/images/"

// Upload is an image file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Stored describes a saved image.
type Stored struct {
	Filename string
	URL      string
	BlurHash string
}

type Options struct {
	MaxWidth int
	Quality  int
	// MaxPixels caps width*height as declared in the image header. Larger
	// uploads are rejected before any pixel data is decoded.
	MaxPixels     int
	Timeout       time.Duration
	PublicBaseURL string
}

// Processor normalizes uploads into width-bounded JPEG files. Go has no pure
// WebP encoder, so output is always JPEG whatever the input format.
type Processor struct {
	storage *Storage
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

func NewProcessor(storage *Storage, opts Options, logger *slog.Logger) *Processor {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 900
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = 40_000_000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Processor{storage: storage, opts: opts, logger: logger, now: time.Now}
}

type optimized struct {
	data     []byte
	blurHash string
}

// Save optimizes up, writes it and returns its public URL. baseURL is the
// scheme and host the request came in on; a configured public base URL
// takes precedence.
func (p *Processor) Save(ctx context.Context, baseURL string, up Upload) (Stored, error) {
	if len(up.Data) == 0 {
		return Stored{}, apperror.Validation("image is required")
	}
	if err := p.checkDimensions(up.Data); err != nil {
		return Stored{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return Stored{}, apperror.Unavailable(err)
	}

	type result struct {
		out optimized
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := p.optimize(up.Data)
		done <- result{out: out, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return Stored{}, apperror.Unavailable(fmt.Errorf("optimize image: %w", ctx.Err()))
	case res = <-done:
	}
	if res.err != nil {
		return Stored{}, res.err
	}

	name, err := p.store(up.Filename, res.out.data)
	if err != nil {
		return Stored{}, apperror.Unavailable(err)
	}

	p.logger.Debug("image stored", "file", name, "bytes", len(res.out.data))

	return Stored{
		Filename: name,
		URL:      p.URL(baseURL, name),
		BlurHash: res.out.blurHash,
	}, nil
}

// Release deletes the file behind a URL previously returned by Save. URLs
// that do not point into the image directory are ignored.
func (p *Processor) Release(ctx context.Context, imageURL string) error {
	if err := ctx.Err(); err != nil {
		return apperror.Unavailable(err)
	}
	name := FilenameFromURL(imageURL)
	if name == "" {
		return nil
	}
	if err := p.storage.Delete(name); err != nil {
		return apperror.Unavailable(err)
	}
	return nil
}

// URL builds the public URL of a stored file.
func (p *Processor) URL(baseURL, name string) string {
	base := p.opts.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(baseURL, "/")
	}
	return base + PublicPrefix + name
}

// checkDimensions reads only the image header. The decode goroutine keeps
// running after a timeout, so its work has to be bounded up front.
func (p *Processor) checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return apperror.Validation("image could not be decoded").WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.opts.MaxPixels) {
		return apperror.Validation("image is too large")
	}
	return nil
}

func (p *Processor) optimize(data []byte) (optimized, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return optimized{}, apperror.Validation("image could not be decoded").WithCause(err)
	}

	img := p.resize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.Quality}); err != nil {
		return optimized{}, fmt.Errorf("encode jpeg: %w", err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		p.logger.Warn("blurhash failed", "error", err)
		hash = ""
	}

	return optimized{data: buf.Bytes(), blurHash: hash}, nil
}

// resize bounds the width to MaxWidth without enlarging and flattens any
// transparency onto white, since JPEG has no alpha channel.
func (p *Processor) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > p.opts.MaxWidth {
		h = max(1, h*p.opts.MaxWidth/w)
		w = p.opts.MaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}
	return dst
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	unsafeChar = regexp.MustCompile(`[^\w.-]`)
)

// SanitizeBase strips the extension of an uploaded file name, replaces runs
// of whitespace with underscores and drops everything outside [A-Za-z0-9_.-].
func SanitizeBase(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = whitespace.ReplaceAllString(base, "_")
	return unsafeChar.ReplaceAllString(base, "")
}

const maxNameAttempts = 1000

// store writes data under <base>-<unixms>.jpg, moving to the next
// millisecond while the name is taken.
func (p *Processor) store(original string, data []byte) (string, error) {
	base := SanitizeBase(original)
	if base == "" {
		base = "image"
	}
	ms := p.now().UnixMilli()
	for range maxNameAttempts {
		name := fmt.Sprintf("%s-%d.jpg", base, ms)
		err := p.storage.Create(name, data)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		ms++
	}
	return "", fmt.Errorf("no free file name for %q", base)
}

// FilenameFromURL returns the part of imageURL after the public prefix, or
// "" when there is none.
func FilenameFromURL(imageURL string) string {
	_, name, found := strings.Cut(imageURL, PublicPrefix)
	if !found || name == "" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}

// BaseURL returns scheme://host for r, honouring X-Forwarded-Proto.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.TrimSpace(scheme)
	}
	return scheme + "://" + r.Host
}
