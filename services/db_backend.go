package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roombook-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBBackend keeps the room collection as one JSON row in MySQL.
type DBBackend struct {
	DB *gorm.DB
}

func NewDBBackend(db *gorm.DB) *DBBackend {
	return &DBBackend{DB: db}
}

func (b *DBBackend) Load(ctx context.Context) ([]models.Room, error) {
	var doc models.RoomDocument
	err := b.DB.WithContext(ctx).First(&doc, models.RoomDocumentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("load room document: %w", err)
	}
	var rooms []models.Room
	if err := json.Unmarshal(doc.Body, &rooms); err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}
	return rooms, nil
}

func (b *DBBackend) Save(ctx context.Context, rooms []models.Room) error {
	if rooms == nil {
		rooms = []models.Room{}
	}
	raw, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}
	doc := models.RoomDocument{ID: models.RoomDocumentID, Body: datatypes.JSON(raw)}
	err = b.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save room document: %w", err)
	}
	return nil
}
