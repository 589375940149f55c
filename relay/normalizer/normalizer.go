package normalizer

import (
	"context"
	"fmt"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/jinzhu/copier"

	imgutil "github.com/VaDeloitte/test-project-sub002/common/image"
	"github.com/VaDeloitte/test-project-sub002/relay/media"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Resolver resolves single attachments. *media.Resolver implements it.
type Resolver interface {
	ResolveImage(ctx context.Context, ref model.FileRef) (string, bool)
	ResolveAudioTranscript(ctx context.Context, ref model.FileRef) (string, bool)
}

const (
	PlaceholderImage = "image"
	PlaceholderText  = "text"
)

type Options struct {
	// Concurrency caps attachment resolutions in flight per message.
	Concurrency int
	// FailedImagePlaceholder is PlaceholderImage or PlaceholderText.
	FailedImagePlaceholder string
}

// Normalizer folds image and audio attachments into message content.
type Normalizer struct {
	resolver Resolver
	opts     Options
}

func New(resolver Resolver, opts Options) *Normalizer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.FailedImagePlaceholder != PlaceholderText {
		opts.FailedImagePlaceholder = PlaceholderImage
	}
	return &Normalizer{resolver: resolver, opts: opts}
}

// TranscriptionBlock formats one audio transcription for appending to message text.
func TranscriptionBlock(filename, text string) string {
	return fmt.Sprintf("\n\n[Audio transcription: %s]\n\n%s", filename, text)
}

// TranscriptionUnavailable is the text used when an audio file could not be transcribed.
func TranscriptionUnavailable(filename string) string {
	return fmt.Sprintf("(audio file %s was attached but transcription was unavailable)", filename)
}

// ImageUnavailable is the text marker used when an image could not be loaded.
func ImageUnavailable(filename string) string {
	return fmt.Sprintf("[Image unavailable: %s]", filename)
}

// Normalize returns new messages whose image and audio attachments are folded into
// content. The input slice and its messages are not modified. Attachments of any
// other kind stay in Attachments. Failed resolutions become visible placeholders.
func (n *Normalizer) Normalize(ctx context.Context, messages []model.Message) []model.Message {
	if len(messages) == 0 {
		return nil
	}

	var out []model.Message
	if err := copier.CopyWithOption(&out, messages, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on type mismatches, which cannot happen for identical types
		panic(err)
	}

	for i := range out {
		out[i] = n.normalizeMessage(ctx, out[i])
	}
	return out
}

func (n *Normalizer) normalizeMessage(ctx context.Context, msg model.Message) model.Message {
	images, audio, others := msg.PartitionAttachments()
	if len(images) == 0 && len(audio) == 0 {
		return msg
	}

	lg := gmw.GetLogger(ctx)
	lg.Debug("normalizing message attachments",
		zap.String("role", msg.Role),
		zap.Int("images", len(images)),
		zap.Int("audio", len(audio)),
		zap.Int("others", len(others)))

	textPrefix := leadingTextBlocks(msg.Content)
	if len(images) > 0 {
		msg.Content = n.foldImages(ctx, msg.Content, images)
	}
	if len(audio) > 0 {
		msg.Content = n.foldAudio(ctx, msg.Content, audio, textPrefix)
	}

	msg.Attachments = others
	return msg
}

// foldImages turns content into blocks: the original text first (when non-empty),
// then one block per image in attachment order.
func (n *Normalizer) foldImages(ctx context.Context, content model.Content, images []model.FileRef) model.Content {
	var blocks []model.ContentBlock
	if content.IsBlocks() {
		blocks = append(blocks, content.Blocks...)
	} else if content.Plain != "" {
		blocks = append(blocks, model.TextBlock(content.Plain))
	}

	results := media.ResolveAll(ctx, n.opts.Concurrency, images, n.resolver.ResolveImage)
	for _, res := range results {
		if res.OK {
			blocks = append(blocks, model.ImageBlock(res.Value))
			continue
		}
		blocks = append(blocks, n.failedImageBlock(ctx, res.Ref))
	}
	return model.NewBlockContent(blocks)
}

func (n *Normalizer) failedImageBlock(ctx context.Context, ref model.FileRef) model.ContentBlock {
	marker := ImageUnavailable(ref.Filename)
	if n.opts.FailedImagePlaceholder == PlaceholderImage {
		dataURL, err := imgutil.PlaceholderDataURL(marker)
		if err == nil {
			return model.ImageBlock(dataURL)
		}
		gmw.GetLogger(ctx).Warn("failed to render image placeholder, using text marker",
			zap.String("file", ref.Filename), zap.Error(err))
	}
	return model.TextBlock(marker)
}

// leadingTextBlocks is the number of text blocks content starts with once it is
// turned into blocks.
func leadingTextBlocks(content model.Content) int {
	if !content.IsBlocks() {
		if content.Plain == "" {
			return 0
		}
		return 1
	}
	at := 0
	for at < len(content.Blocks) && content.Blocks[at].Kind() == model.KindText {
		at++
	}
	return at
}

// foldAudio appends one transcription section per audio file to the textual part.
// Plain content gets the sections appended to the string. Block content gets one
// new text block after the first textPrefix blocks, which are the message's own text.
func (n *Normalizer) foldAudio(ctx context.Context, content model.Content, audio []model.FileRef, textPrefix int) model.Content {
	var appendix string
	for _, res := range media.ResolveAll(ctx, n.opts.Concurrency, audio, n.resolver.ResolveAudioTranscript) {
		text := res.Value
		if !res.OK {
			text = TranscriptionUnavailable(res.Ref.Filename)
		}
		appendix += TranscriptionBlock(res.Ref.Filename, text)
	}

	if !content.IsBlocks() {
		return model.NewTextContent(content.Plain + appendix)
	}

	at := min(textPrefix, len(content.Blocks))
	blocks := make([]model.ContentBlock, 0, len(content.Blocks)+1)
	blocks = append(blocks, content.Blocks[:at]...)
	blocks = append(blocks, model.TextBlock(appendix))
	blocks = append(blocks, content.Blocks[at:]...)
	return model.NewBlockContent(blocks)
}
