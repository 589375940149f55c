package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"

	"github.com/Laisky/errors/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/network"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/[^;]+);base64,(.*)$`)

// ErrNotImage is returned when a fetched body is not an image.
var ErrNotImage = errors.New("response is not an image")

// ToDataURL encodes data as a base64 data URL.
func ToDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s is a base64 image data URL.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

func maxInlineBytes() int64 {
	return int64(config.MaxInlineImageSizeMB) * 1024 * 1024
}

// FetchDataURL downloads an image from one of allowedHosts and returns it as a data URL.
// The body must be an image by its Content-Type or by content sniffing.
func FetchDataURL(ctx context.Context, client *http.Client, rawURL string, allowedHosts []string) (string, error) {
	if err := network.CheckBlobURL(rawURL, allowedHosts); err != nil {
		return "", errors.Wrap(err, "check image url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build image request")
	}

	resp, err := network.RestrictRedirects(client, allowedHosts).Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch image: status code %d", resp.StatusCode)
	}

	maxSize := maxInlineBytes()
	if resp.ContentLength > maxSize {
		return "", errors.Errorf("image size should not exceed %dMB, got %d bytes", config.MaxInlineImageSizeMB, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read image body")
	}
	if int64(len(data)) > maxSize {
		return "", errors.Errorf("image size should not exceed %dMB", config.MaxInlineImageSizeMB)
	}

	mimeType, err := detectMimeType(resp.Header.Get("Content-Type"), data)
	if err != nil {
		return "", err
	}
	return ToDataURL(mimeType, data), nil
}

// detectMimeType prefers an image Content-Type, then content sniffing.
func detectMimeType(contentType string, data []byte) (string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType, nil
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	return "", errors.Wrapf(ErrNotImage, "content type %q", contentType)
}

// GetImageSizeFromDataURL decodes the dimensions of a data URL image.
func GetImageSizeFromDataURL(dataURL string) (width int, height int, err error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if len(matches) != 3 {
		return 0, 0, errors.New("not an image data url")
	}
	decoded, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return 0, 0, errors.Wrap(err, "decode base64")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(decoded))
	if err != nil {
		return 0, 0, errors.Wrap(err, "decode image config")
	}
	return cfg.Width, cfg.Height, nil
}

// GenerateTextImage renders text in black on a white PNG card. It stands in for
// attachments that could not be downloaded so the model still sees that an image was there.
func GenerateTextImage(text string) (imageData []byte, mimeType string, err error) {
	if text == "" {
		text = "Image not available"
	}

	const (
		charWidth       = 8.0
		charHeight      = 16.0
		padding         = 20.0
		maxCharsPerLine = 50
	)

	lines := wrapText(text, maxCharsPerLine)
	maxLineWidth := 0
	for _, line := range lines {
		maxLineWidth = max(maxLineWidth, len(line))
	}

	imageWidth := max(200, int(math.Ceil(float64(maxLineWidth)*charWidth+padding*2)))
	imageHeight := max(100, int(math.Ceil(float64(len(lines))*charHeight+padding*2)))

	// RGBA plus about 20% PNG overhead
	estimated := int64(imageWidth * imageHeight * 4)
	estimated += estimated / 5
	if estimated > maxInlineBytes() {
		return nil, "", errors.Errorf("generated image size would exceed %dMB limit: estimated %d bytes for text length %d",
			config.MaxInlineImageSizeMB, estimated, len(text))
	}

	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		y := int(padding+charHeight) + i*int(charHeight)
		drawer.Dot = fixed.P(int(padding), y)
		drawer.DrawString(line)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return nil, "", errors.Wrap(err, "failed to encode image to PNG")
	}
	return buf.Bytes(), "image/png", nil
}

// PlaceholderDataURL renders text with GenerateTextImage and returns it as a data URL.
func PlaceholderDataURL(text string) (string, error) {
	data, mimeType, err := GenerateTextImage(text)
	if err != nil {
		return "", err
	}
	return ToDataURL(mimeType, data), nil
}

// wrapText breaks text on word boundaries, splitting words longer than a line.
func wrapText(text string, maxCharsPerLine int) []string {
	if len(text) <= maxCharsPerLine {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case len(current)+len(word)+1 > maxCharsPerLine:
			lines = append(lines, current)
			current = word
		default:
			current += " " + word
		}

		for len(current) > maxCharsPerLine {
			lines = append(lines, current[:maxCharsPerLine])
			current = current[maxCharsPerLine:]
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
