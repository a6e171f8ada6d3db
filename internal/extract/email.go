package extract

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/joseph-ayodele/docmeta/constants"
)

// EMLExtractor reads the envelope headers of a single RFC 5322 message.
type EMLExtractor struct{}

func (e *EMLExtractor) Format() constants.Format { return constants.Email }

func (e *EMLExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	env, err := readEnvelope(f)
	if err != nil {
		return nil, err
	}
	return Metadata{
		"subject":          env.GetHeader("Subject"),
		"from":             env.GetHeader("From"),
		"to":               env.GetHeader("To"),
		"date":             env.GetHeader("Date"),
		"cc":               env.GetHeader("Cc"),
		"attachment_count": countAttachments(env.Root),
	}, nil
}

func readEnvelope(r io.Reader) (*enmime.Envelope, error) {
	return enmime.ReadEnvelope(r)
}

// countAttachments walks the whole MIME tree, root included, counting parts
// whose content disposition is "attachment".
func countAttachments(p *enmime.Part) int {
	if p == nil {
		return 0
	}
	n := 0
	if strings.EqualFold(p.Disposition, "attachment") {
		n++
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		n += countAttachments(c)
	}
	return n
}
