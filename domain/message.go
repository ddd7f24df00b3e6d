// Package domain contains core concepts of the messenger system.
// This file defines Message values and their validation rules.
// Messages are immutable once appended to a chat log.
package domain

import (
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"messenger/errors"
)

type MessageKind string

const (
	KindText MessageKind = "text"
	KindFile MessageKind = "file"
)

// Message represents one immutable chat entry. Text messages carry Text;
// file messages carry Filename, MimeType and Data. The zero value is not
// a valid message: use the constructors.
type Message struct {
	ID       uuid.UUID   `json:"id"`
	Kind     MessageKind `json:"kind"`
	Author   string      `json:"author"`
	SentAt   time.Time   `json:"sent_at"`
	Text     string      `json:"text,omitempty"`
	Filename string      `json:"filename,omitempty"`
	MimeType string      `json:"mime_type,omitempty"`
	Data     []byte      `json:"data,omitempty"`
}

// NewTextMessage builds a text message stamped with the current time.
func NewTextMessage(author, text string) (Message, error) {
	return NewTextMessageAt(time.Now().UTC(), author, text)
}

// NewTextMessageAt builds a text message with an explicit timestamp,
// used when replaying stored conversations.
func NewTextMessageAt(sentAt time.Time, author, text string) (Message, error) {
	if err := checkAuthorAndTimestamp(author, sentAt); err != nil {
		return Message{}, err
	}
	if text == "" {
		return Message{}, errors.ErrEmptyContents
	}
	return Message{
		ID:     uuid.New(),
		Kind:   KindText,
		Author: author,
		SentAt: sentAt,
		Text:   text,
	}, nil
}

// NewFileMessage builds a file message stamped with the current time.
// The content type is detected from the payload itself, never trusted
// from the filename.
func NewFileMessage(author, filename string, data []byte) (Message, error) {
	return NewFileMessageAt(time.Now().UTC(), author, filename, data)
}

// NewFileMessageAt builds a file message with an explicit timestamp.
func NewFileMessageAt(sentAt time.Time, author, filename string, data []byte) (Message, error) {
	if err := checkAuthorAndTimestamp(author, sentAt); err != nil {
		return Message{}, err
	}
	if filename == "" {
		return Message{}, errors.ErrEmptyFilename
	}
	if len(data) == 0 {
		return Message{}, errors.ErrEmptyContents
	}
	return Message{
		ID:       uuid.New(),
		Kind:     KindFile,
		Author:   author,
		SentAt:   sentAt,
		Filename: filename,
		MimeType: mimetype.Detect(data).String(),
		Data:     data,
	}, nil
}

func checkAuthorAndTimestamp(author string, sentAt time.Time) error {
	if author == "" {
		return errors.ErrEmptyAuthor
	}
	if sentAt.IsZero() {
		return errors.ErrZeroTimestamp
	}
	return nil
}
