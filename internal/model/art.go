package model

import (
	"strings"
	"time"
)

// Mood is one of the fixed emotional tags that drive art generation.
type Mood string

const (
	MoodHappy    Mood = "Happy"
	MoodSad      Mood = "Sad"
	MoodCalm     Mood = "Calm"
	MoodExcited  Mood = "Excited"
	MoodAngry    Mood = "Angry"
	MoodInspired Mood = "Inspired"
	MoodMixed    Mood = "Mixed"
)

// Moods lists every valid mood in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodCalm, MoodExcited, MoodAngry, MoodInspired, MoodMixed}

// DefaultStyle is stored when a generation request does not name a style.
const DefaultStyle = "Abstract"

// Valid reports whether m is one of the enumerated moods. Matching is exact.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// Avatar returns the avatar tag derived from this mood, e.g. "happy_avatar".
func (m Mood) Avatar() string {
	if m == "" {
		return DefaultAvatar
	}
	return strings.ToLower(string(m)) + "_avatar"
}

// ArtPiece is a generated image and its metadata.
//
// UserID is nil for anonymous generations. Votes only ever grows.
// Collaborators holds user IDs with no duplicates.
type ArtPiece struct {
	ID            string    `json:"id"`
	UserID        *string   `json:"userId"`
	Mood          Mood      `json:"mood"`
	ImageURL      string    `json:"imageUrl"`
	Prompt        string    `json:"prompt"`
	Style         string    `json:"style"`
	Colors        []string  `json:"colors"`
	Votes         int       `json:"votes"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"createdAt"`
}
