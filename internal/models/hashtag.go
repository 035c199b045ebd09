package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrHashtagType = errors.New("hashtag must be a string or a list of strings")

// Hashtag is the decoded hashtag input: absent, or a single raw tag. A list
// keeps only its first element.
type Hashtag struct {
	raw string
	set bool
}

func NewHashtag(raw string) Hashtag {
	return Hashtag{raw: raw, set: true}
}

func (h Hashtag) IsSet() bool { return h.set }

func (h *Hashtag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = Hashtag{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*h = NewHashtag(s)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return ErrHashtagType
		}
		if len(list) == 0 {
			*h = Hashtag{}
			return nil
		}
		*h = NewHashtag(list[0])
		return nil
	}
	return ErrHashtagType
}

func (h Hashtag) MarshalJSON() ([]byte, error) {
	if !h.set {
		return []byte("null"), nil
	}
	return json.Marshal(h.raw)
}

// Normalize returns the stored form of the tag, or nil when there is none.
func (h Hashtag) Normalize() *string {
	if !h.set {
		return nil
	}
	return NormalizeHashtag(h.raw)
}

// NormalizeHashtag trims the tag and prefixes '#' when missing.
func NormalizeHashtag(raw string) *string {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return nil
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return &tag
}

// LongFormThreshold is the word count at which a post becomes long-form.
const LongFormThreshold = 60

// ClassifyKind picks the post kind from its whitespace-separated word count.
func ClassifyKind(content string) string {
	if len(strings.Fields(content)) >= LongFormThreshold {
		return KindLong
	}
	return KindShort
}
