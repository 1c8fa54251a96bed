package models

import "time"

// Reaction is one user's emoji on one image
type Reaction struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64" bson:"_id" firestore:"-" validate:"required"`
	ImageID   string    `json:"image_id" gorm:"index;not null" bson:"imageId" firestore:"imageId" validate:"required"`
	UserID    string    `json:"user_id" gorm:"index;not null" bson:"userId" firestore:"userId" validate:"required"`
	Emoji     string    `json:"emoji" gorm:"size:32;not null" bson:"emoji" firestore:"emoji" validate:"required,max=32"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"createdAt" firestore:"createdAt" validate:"required"`
}

func (*Reaction) Collection() Collection    { return CollectionReactions }
func (r *Reaction) GetID() string           { return r.ID }
func (r *Reaction) SetID(id string)         { r.ID = id }
func (r *Reaction) GetImageID() string      { return r.ImageID }
func (r *Reaction) GetCreatedAt() time.Time { return r.CreatedAt }

// CreateReactionRequest defines the request body for toggling a reaction
type CreateReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

// ReactionSummary is the aggregated view of an image's reactions
type ReactionSummary struct {
	ImageID string         `json:"image_id"`
	Counts  map[string]int `json:"counts"`
	Mine    []string       `json:"mine"`
}
