package models

import "time"

// FeedEventKind tells what kind of interaction a feed event summarizes
type FeedEventKind string

const (
	FeedEventReaction FeedEventKind = "reaction"
	FeedEventComment  FeedEventKind = "comment"
)

// FeedPayload carries the kind-specific part of a feed event: Emoji for
// reactions, Text for comments. Removed marks a reaction toggled off.
type FeedPayload struct {
	Emoji   string `json:"emoji,omitempty" bson:"emoji,omitempty" firestore:"emoji,omitempty"`
	Text    string `json:"text,omitempty" bson:"text,omitempty" firestore:"text,omitempty"`
	Removed bool   `json:"removed,omitempty" bson:"removed,omitempty" firestore:"removed,omitempty"`
}

// FeedEvent is an append-only record of a reaction or comment. It is written
// in the same transaction as its source and outlives it.
type FeedEvent struct {
	ID          string        `json:"id" gorm:"primaryKey;size:64" bson:"_id" firestore:"-" validate:"required"`
	Kind        FeedEventKind `json:"kind" gorm:"size:16;not null" bson:"kind" firestore:"kind" validate:"required,oneof=reaction comment"`
	ImageID     string        `json:"image_id" gorm:"index;not null" bson:"imageId" firestore:"imageId" validate:"required"`
	UserID      string        `json:"user_id" gorm:"index;not null" bson:"userId" firestore:"userId" validate:"required"`
	DisplayName string        `json:"display_name" bson:"displayName" firestore:"displayName" validate:"required"`
	Color       string        `json:"color" gorm:"size:16" bson:"color" firestore:"color" validate:"omitempty,hexcolor"`
	Payload     FeedPayload   `json:"payload" gorm:"serializer:json" bson:"payload" firestore:"payload"`
	CreatedAt   time.Time     `json:"created_at" gorm:"index" bson:"createdAt" firestore:"createdAt" validate:"required"`
}

func (*FeedEvent) Collection() Collection    { return CollectionFeedEvents }
func (e *FeedEvent) GetID() string           { return e.ID }
func (e *FeedEvent) SetID(id string)         { e.ID = id }
func (e *FeedEvent) GetImageID() string      { return e.ImageID }
func (e *FeedEvent) GetCreatedAt() time.Time { return e.CreatedAt }
