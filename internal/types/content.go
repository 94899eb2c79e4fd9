package types

import (
	"fmt"
	"time"
)

// ContentType discriminates the three content variants stored in the shared
// content_record table.
type ContentType string

const (
	ContentTypeArticle      ContentType = "article"
	ContentTypeBook         ContentType = "book"
	ContentTypeDissertation ContentType = "dissertation"
)

func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentTypeArticle, ContentTypeBook, ContentTypeDissertation:
		return ContentType(s), nil
	}
	return "", fmt.Errorf("invalid content type %q", s)
}

func AllContentTypes() []ContentType {
	return []ContentType{ContentTypeArticle, ContentTypeBook, ContentTypeDissertation}
}

// IndexName is the search index backing a variant.
func (ct ContentType) IndexName() string { return string(ct) + "s" }

// Language codes carried by every record.
const (
	LanguageTurkmen = "tm"
	LanguageRussian = "ru"
	LanguageEnglish = "en"
)

// Article sub-types (column "type" on articles only).
const (
	ArticleTypeLocal   = "local"
	ArticleTypeForeign = "foreign"
)

// ContentRecord is the authoritative row for an article, book or
// dissertation. Variant-specific columns are nullable and only populated for
// the variant they belong to. Views and rating aggregates are denormalized
// here and mutated only by the flush job and the rating service.
type ContentRecord struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;index:idx_content_record_type" json:"content_type"`

	Title         string  `gorm:"column:title;size:255;not null" json:"title"`
	Content       string  `gorm:"column:content;type:text" json:"content"`
	Author        string  `gorm:"column:author;size:100;not null" json:"author"`
	Language      string  `gorm:"column:language;size:2;not null;default:tm" json:"language"`
	AverageRating float64 `gorm:"column:average_rating;not null;default:0" json:"average_rating"`
	RatingCount   int     `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	Views         int64   `gorm:"column:views;not null;default:0" json:"views"`

	// Article / dissertation
	AuthorWorkplace *string    `gorm:"column:author_workplace;size:255" json:"author_workplace,omitempty"`
	PublicationDate *time.Time `gorm:"column:publication_date;type:date" json:"publication_date,omitempty"`

	// Article only
	ArticleType        *string `gorm:"column:type;size:7" json:"type,omitempty"`
	SourceName         *string `gorm:"column:source_name;size:255" json:"source_name,omitempty"`
	SourceURL          *string `gorm:"column:source_url;size:255" json:"source_url,omitempty"`
	NewspaperOrJournal *string `gorm:"column:newspaper_or_journal;size:255" json:"newspaper_or_journal,omitempty"`
	Image              *string `gorm:"column:image;size:255" json:"image,omitempty"`

	// Book only
	EpubFile   *string `gorm:"column:epub_file;size:255" json:"epub_file,omitempty"`
	CoverImage *string `gorm:"column:cover_image;size:255" json:"cover_image,omitempty"`

	Categories []*Category `gorm:"many2many:content_category;" json:"categories,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentRecord) TableName() string { return "content_record" }
