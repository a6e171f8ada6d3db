package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/emersion/go-mbox"

	"github.com/joseph-ayodele/docmeta/constants"
)

// MBOXExtractor summarizes a mailbox: message count, total attachments and
// the Date headers of the first and last message.
type MBOXExtractor struct {
	logger *slog.Logger
}

func (e *MBOXExtractor) Format() constants.Format { return constants.Mailbox }

func (e *MBOXExtractor) Extract(_ context.Context, path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		messages    int
		attachments int
		firstDate   string
		lastDate    string
	)
	mr := mbox.NewReader(f)
	for {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		messages++

		env, err := readEnvelope(msg)
		if err != nil {
			// keep counting; one broken message should not hide the rest
			if e.logger != nil {
				e.logger.Warn("skipping unparseable message", "path", path, "index", messages, "error", err)
			}
			continue
		}
		attachments += countAttachments(env.Root)
		date := env.GetHeader("Date")
		if messages == 1 {
			firstDate = date
		}
		lastDate = date
	}

	return Metadata{
		"message_count":    messages,
		"attachment_count": attachments,
		"first_date":       firstDate,
		"last_date":        lastDate,
	}, nil
}
