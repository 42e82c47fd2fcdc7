package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bank-assistant-go/internal/kb"
)

// JSONDocument stores the serialized data document in a jsonb column.
type JSONDocument []byte

func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	return []byte(d), nil
}

func (d *JSONDocument) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		*d = append((*d)[:0], v...)
		return nil
	case string:
		*d = JSONDocument(v)
		return nil
	default:
		return fmt.Errorf("unsupported type for JSONDocument: %T", value)
	}
}

type bankDocument struct {
	ID        uint         `gorm:"primaryKey"`
	Data      JSONDocument `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (bankDocument) TableName() string { return "bank_documents" }

// GormPersister keeps the document in Postgres instead of a flat file, for
// deployments that want a transactional store. Semantics stay the same:
// the whole document is rewritten per mutation, read-after-write consistent.
type GormPersister struct {
	db *gorm.DB
}

// OpenGormPersister connects and migrates the single-row document table.
func OpenGormPersister(dsn string) (*GormPersister, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&bankDocument{}); err != nil {
		return nil, fmt.Errorf("migrate bank_documents: %w", err)
	}
	log.Info("connected to postgres document store")
	return &GormPersister{db: db}, nil
}

func (p *GormPersister) Save(doc *kb.Document) error {
	raw, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode data document: %w", err)
	}
	row := bankDocument{ID: 1, Data: raw}
	return p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// Load returns the stored document, or nil when the table is still empty
// and the caller should seed from the bootstrap file.
func (p *GormPersister) Load() (*kb.Document, error) {
	var row bankDocument
	err := p.db.First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load data document: %w", err)
	}
	return kb.Parse(row.Data)
}
