package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is the row backing one user's JSON document.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerID   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_owner_name" json:"owner_id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_owner_name" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "workspace_documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

type gormStore struct {
	db   *gorm.DB
	name string
}

// NewGormStore keeps documents in a table of the given database.
func NewGormStore(db *gorm.DB, name string) Store {
	return &gormStore{db: db, name: name}
}

// Migrate creates the document table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

func (s *gormStore) Find(ctx context.Context, owner Owner) (string, error) {
	var doc Document
	err := s.db.WithContext(ctx).Select("id").
		Where("owner_id = ? AND name = ?", owner.ID, s.name).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.ID.String(), nil
}

func (s *gormStore) Read(ctx context.Context, owner Owner, fileID string) ([]byte, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc Document
	err = s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, owner.ID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Content), nil
}

func (s *gormStore) Create(ctx context.Context, owner Owner, data []byte) (string, error) {
	doc := &Document{OwnerID: owner.ID, Name: s.name, Content: string(data)}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", err
	}
	return doc.ID.String(), nil
}

func (s *gormStore) Update(ctx context.Context, owner Owner, fileID string, data []byte) error {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&Document{}).
		Where("id = ? AND owner_id = ?", id, owner.ID).
		Updates(map[string]interface{}{
			"content":    string(data),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
