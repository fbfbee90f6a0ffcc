package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoomDocumentID is the primary key of the single row holding the room list.
const RoomDocumentID = 1

// RoomDocument stores the whole room collection as one JSON value.
// The row is rewritten wholesale on every mutation.
type RoomDocument struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Body      datatypes.JSON `gorm:"column:body" json:"body"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (RoomDocument) TableName() string {
	return "room_documents"
}
