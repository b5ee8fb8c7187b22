// Package image provides void image blocks and a consumer that turns image
// resources into them.
package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/tree"
)

// Name is the plugin name and the image node type.
const Name = "core/image"

// Image properties.
const (
	SrcKey  = "src"
	MIMEKey = "mime"
	AltKey  = "alt"
)

// DefaultMaxBytes caps inlined image data.
const DefaultMaxBytes = 8 << 20

// Image errors.
var (
	// ErrNoSource indicates an image without a source.
	ErrNoSource = errors.New("image: no source")

	// ErrTooLarge indicates image data over the inline limit.
	ErrTooLarge = errors.New("image: data too large")

	// ErrNotImage indicates a resource that is not an image.
	ErrNotImage = errors.New("image: not an image")
)

// New returns an image node.
func New(src, mime, alt string) *tree.Element {
	el := tree.NewElement(Name, tree.ClassVoid, tree.NewText(""))
	el.SetProperty(SrcKey, src)
	if mime != "" {
		el.SetProperty(MIMEKey, mime)
	}
	if alt != "" {
		el.SetProperty(AltKey, alt)
	}
	return el
}

// Plugin returns the image plugin definition. maxBytes caps inlined data; 0
// uses DefaultMaxBytes.
func Plugin(maxBytes int) plugin.Definition {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return plugin.Definition{
		Name:     Name,
		Class:    tree.ClassVoid,
		Consumer: Consumer{MaxBytes: maxBytes},
		Component: plugin.ComponentEntry{
			Constraints: plugin.Constraints{
				AllowBreak:     plugin.Bool(false),
				AllowSoftBreak: plugin.Bool(false),
				NormalizeNode:  normalizeImage,
			},
		},
		Actions: []plugin.Action{{
			Title:       "Image",
			Description: "Insert an image from a URL",
			Tool:        plugin.Tool{Icon: "image", Label: "Image"},
			Handler:     insert,
			Visibility: func(_, root *tree.Element) plugin.Visibility {
				return plugin.Visibility{
					Visible: true,
					Enabled: true,
					Active:  root != nil && root.Type == Name,
				}
			},
		}},
	}
}

// insert adds an image whose source is the first argument.
func insert(ctx *plugin.Context) (bool, error) {
	var src string
	if len(ctx.Args) > 0 {
		src, _ = ctx.Args[0].(string)
	}
	if src == "" {
		return false, ErrNoSource
	}
	var alt string
	if len(ctx.Args) > 1 {
		alt, _ = ctx.Args[1].(string)
	}
	return true, blocks.Insert(ctx.Editor, New(src, "", alt))
}

// normalizeImage removes images without a source and keeps a single empty
// text leaf inside the rest.
func normalizeImage(ed tree.Editor, entry tree.Entry) (bool, error) {
	el := entry.Element()
	if src, _ := el.Properties[SrcKey].(string); src == "" {
		return true, tree.RemoveNodes(ed, entry.Path)
	}
	if len(el.Children) == 1 {
		if t, ok := el.Children[0].(*tree.Text); ok && t.Text == "" {
			return false, nil
		}
	}
	if len(el.Children) > 0 {
		return true, tree.RemoveNodes(ed, entry.Path.Child(len(el.Children)-1))
	}
	return true, tree.InsertNodes(ed, entry.Path.Child(0), tree.NewText(""))
}

// Consumer turns image resources into image nodes. Data is inlined as a
// data URL; a resource with a URL references it instead.
type Consumer struct {
	MaxBytes int
}

// Consumes implements plugin.Consumer.
func (c Consumer) Consumes(res plugin.Resource) bool {
	return strings.HasPrefix(detect(res), "image/")
}

// Consume implements plugin.Consumer.
func (c Consumer) Consume(ctx context.Context, res plugin.Resource) ([]tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mime := detect(res)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	src := res.URL
	if src == "" {
		if len(res.Data) == 0 {
			return nil, ErrNoSource
		}
		if c.MaxBytes > 0 && len(res.Data) > c.MaxBytes {
			return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(res.Data))
		}
		src = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(res.Data)
	}
	return []tree.Node{New(src, mime, res.Name)}, nil
}

// detect returns the resource MIME type, sniffing the data when none is
// declared.
func detect(res plugin.Resource) string {
	if res.MIME != "" {
		mime, _, _ := strings.Cut(strings.ToLower(res.MIME), ";")
		return strings.TrimSpace(mime)
	}
	if len(res.Data) == 0 {
		return ""
	}
	return mimetype.Detect(res.Data).String()
}
