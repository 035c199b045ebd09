package models

import (
	"time"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	Pseudo       string    `json:"pseudo" db:"pseudo"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	PostAmount   int       `json:"postAmount" db:"post_amount"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID         int64     `json:"id"`
	Pseudo     string    `json:"pseudo"`
	Email      string    `json:"email"`
	PostAmount int       `json:"postAmount"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Pseudo:     u.Pseudo,
		Email:      u.Email,
		PostAmount: u.PostAmount,
		CreatedAt:  u.CreatedAt,
	}
}

// UserUpdate carries the allow-listed user fields; nil means unchanged.
type UserUpdate struct {
	Pseudo       *string
	Email        *string
	PasswordHash *string
	PostAmount   *int
}

func (u UserUpdate) Empty() bool {
	return u.Pseudo == nil && u.Email == nil && u.PasswordHash == nil && u.PostAmount == nil
}

// Identity is the authenticated caller, established from a verified token.
type Identity struct {
	UserID int64
}

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"

	KindShort = "short-form"
	KindLong  = "long-form"
)

type Post struct {
	ID              int64     `json:"id" db:"id"`
	AuthorID        int64     `json:"authorId" db:"author_id"`
	AuthorName      string    `json:"authorName" db:"author_name"`
	Kind            string    `json:"kind" db:"kind"`
	Title           *string   `json:"title" db:"title"`
	Content         string    `json:"content" db:"content"`
	Hashtag         *string   `json:"hashtag" db:"hashtag"`
	Visibility      string    `json:"visibility" db:"visibility"`
	TTSInstructions *string   `json:"ttsInstructions" db:"tts_instructions"`
	TTSAudioURL     *string   `json:"ttsAudioUrl" db:"tts_audio_url"`
	TTSGenerated    bool      `json:"ttsGenerated" db:"tts_generated"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

func (p *Post) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// PostUpdate carries resolved column values for an update; nil leaves the
// column as stored.
type PostUpdate struct {
	Title           *string
	Content         *string
	Hashtag         *string
	Visibility      *string
	TTSInstructions *string
	Kind            *string
}

type CreatePostRequest struct {
	Kind            string  `json:"kind" validate:"omitempty,max=32"`
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Content         string  `json:"content" validate:"max=10000"`
	Hashtag         Hashtag `json:"hashtag" validate:"-"`
	Visibility      string  `json:"visibility" validate:"omitempty,visibility"`
	TTSInstructions *string `json:"ttsInstructions" validate:"omitempty,max=1000"`
}

type UpdatePostRequest struct {
	Kind            *string `json:"kind" validate:"omitempty,max=32"`
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Content         *string `json:"content" validate:"omitempty,max=10000"`
	Hashtag         Hashtag `json:"hashtag" validate:"-"`
	Visibility      *string `json:"visibility" validate:"omitempty,visibility"`
	TTSInstructions *string `json:"ttsInstructions" validate:"omitempty,max=1000"`
}
