package models

import "time"

// Collection names a remote collection in the live-query store.
type Collection string

const (
	CollectionReactions  Collection = "reactions"
	CollectionComments   Collection = "comments"
	CollectionFeedEvents Collection = "feedEvents"
)

// Record is a document owned by the remote store.
type Record interface {
	Collection() Collection
	GetID() string
	SetID(id string)
	GetImageID() string
	GetCreatedAt() time.Time
}

// NewRecord returns an empty record of the collection's concrete type, or nil
// for an unknown collection.
func NewRecord(c Collection) Record {
	switch c {
	case CollectionReactions:
		return &Reaction{}
	case CollectionComments:
		return &Comment{}
	case CollectionFeedEvents:
		return &FeedEvent{}
	}
	return nil
}
