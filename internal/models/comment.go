package models

import "time"

// MaxCommentLength bounds comment text, in characters.
const MaxCommentLength = 500

// Comment represents a comment on an image. The author's display name and
// color are captured when the comment is written.
type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64" bson:"_id" firestore:"-" validate:"required"`
	ImageID     string    `json:"image_id" gorm:"index;not null" bson:"imageId" firestore:"imageId" validate:"required"`
	UserID      string    `json:"user_id" gorm:"index;not null" bson:"userId" firestore:"userId" validate:"required"`
	DisplayName string    `json:"display_name" bson:"displayName" firestore:"displayName" validate:"required"`
	Color       string    `json:"color" gorm:"size:16" bson:"color" firestore:"color" validate:"omitempty,hexcolor"`
	Text        string    `json:"text" gorm:"type:text;not null" bson:"text" firestore:"text" validate:"required,max=500"`
	CreatedAt   time.Time `json:"created_at" gorm:"index" bson:"createdAt" firestore:"createdAt" validate:"required"`
}

func (*Comment) Collection() Collection    { return CollectionComments }
func (c *Comment) GetID() string           { return c.ID }
func (c *Comment) SetID(id string)         { c.ID = id }
func (c *Comment) GetImageID() string      { return c.ImageID }
func (c *Comment) GetCreatedAt() time.Time { return c.CreatedAt }

// CreateCommentRequest defines the request body for creating a new comment.
// Blank text is rejected by the interaction layer, after trimming.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=2000"`
}
