package models

import "strings"

// Category tags a record as incoming letter, outgoing letter or document group
type Category string

const (
	CategoryIncoming Category = "masuk"
	CategoryOutgoing Category = "keluar"
	CategoryDocument Category = "dokumen"
)

// Categories lists every known category in display order
var Categories = []Category{CategoryIncoming, CategoryOutgoing, CategoryDocument}

// ParseCategory accepts the stored tag case-insensitively
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// IsLetter reports whether records of this category carry a single file
func (c Category) IsLetter() bool {
	return c == CategoryIncoming || c == CategoryOutgoing
}

// Record is one archived item. Column names follow the schema used by
// existing installs so older snapshots remain readable.
type Record struct {
	ID           uint     `gorm:"column:id;primaryKey;autoIncrement"`
	Number       string   `gorm:"column:nomor_surat"`
	Subject      string   `gorm:"column:judul_surat"`
	Counterparty string   `gorm:"column:asal_surat"`
	Category     Category `gorm:"column:kategori"`
	Date         string   `gorm:"column:tanggal"`       // received or sent, YYYY-MM-DD
	LetterDate   string   `gorm:"column:tanggal_surat"` // printed on the letter
	Note         string   `gorm:"column:keterangan"`
	FilePath     *string  `gorm:"column:file_path"`
}

func (Record) TableName() string {
	return "surat"
}

// Attachment returns the stored path or "" when none is set
func (r *Record) Attachment() string {
	if r.FilePath == nil {
		return ""
	}
	return *r.FilePath
}

// Attachment pairs a record id with its stored filesystem path
type Attachment struct {
	ID   uint   `gorm:"column:id"`
	Path string `gorm:"column:file_path"`
}

// PathUpdate rewrites the stored path of one record
type PathUpdate struct {
	Path string
	ID   uint
}
