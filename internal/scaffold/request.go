package scaffold

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/collection"
)

// Request is everything needed to scaffold one entry. It lives for a single
// invocation and is never persisted.
type Request struct {
	Kind        collection.Kind
	Title       string
	Description string // ignored for kinds without a description field
	Tags        []string
	Date        time.Time
}

// Validate checks the request. A blank title is an ErrEmptyInput.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrEmptyInput)
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.By(validKind)),
		validation.Field(&r.Title, validation.By(validUTF8), validation.By(singleLine)),
		validation.Field(&r.Description, validation.By(validUTF8), validation.By(singleLine)),
		validation.Field(&r.Tags, validation.Each(validation.Required, validation.By(validUTF8), validation.By(singleLine))),
		validation.Field(&r.Date, validation.Required),
	)
}

func validKind(value any) error {
	k, _ := value.(collection.Kind)
	if !k.Valid() {
		return fmt.Errorf("%w: %v", apperr.ErrUnknownKind, value)
	}
	return nil
}

// validUTF8 rejects text the terminal did not send as UTF-8. Quoting would
// otherwise turn each stray byte into a different character on disk.
func validUTF8(value any) error {
	s, _ := value.(string)
	if !utf8.ValidString(s) {
		return errors.New("must be valid UTF-8")
	}
	return nil
}

func singleLine(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must be a single line")
	}
	return nil
}

// ParseTags splits a comma-separated line into tags. Each element is trimmed,
// empty elements are dropped, order and duplicates are kept.
func ParseTags(line string) []string {
	tags := []string{}
	for _, part := range strings.Split(line, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
