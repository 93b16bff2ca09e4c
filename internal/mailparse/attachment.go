package mailparse

import (
	"errors"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/mail"
)

// ErrNoAttachment is returned when a message contains no part with an
// attachment disposition.
var ErrNoAttachment = errors.New("no attachment part found")

// Attachment returns the decoded bytes and filename of the first part of the
// fetched message whose disposition is "attachment".
func Attachment(msg *imap.Message) ([]byte, string, error) {
	section := &imap.BodySectionName{}
	r := msg.GetBody(section)
	if r == nil {
		return nil, "", fmt.Errorf("message body could not be retrieved")
	}
	return attachmentFromReader(r)
}

func attachmentFromReader(r io.Reader) ([]byte, string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("error creating mail reader: %w", err)
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, "", fmt.Errorf("error reading mail part: %w", err)
		}

		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, _ := h.Filename()
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, "", fmt.Errorf("error reading attachment %q: %w", filename, err)
		}
		return data, filename, nil
	}

	return nil, "", ErrNoAttachment
}
