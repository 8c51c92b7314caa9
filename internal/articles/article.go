// Package articles holds the credit card article domain: articles, their
// authors and the benefit icons shown on each card, plus the service that
// ties storage to the document sync layer.
package articles

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// Tags classify a card for the site's filters.
type Tags struct {
	Bank    string `json:"bank" validate:"max=80"`
	Issuer  string `json:"issuer" validate:"max=80"`
	Benefit string `json:"benefit" validate:"max=80"`
}

// Ratings are the editorial scores, each from 0 to 5.
type Ratings struct {
	MainFeatures   float64 `json:"main_features" validate:"gte=0,lte=5"`
	Taxes          float64 `json:"taxes" validate:"gte=0,lte=5"`
	OtherFeatures  float64 `json:"other_features" validate:"gte=0,lte=5"`
	CardBenefits   float64 `json:"card_benefits" validate:"gte=0,lte=5"`
	IssuerBenefits float64 `json:"issuer_benefits" validate:"gte=0,lte=5"`
}

// Average is the overall score shown on the card.
func (r Ratings) Average() float64 {
	return (r.MainFeatures + r.Taxes + r.OtherFeatures + r.CardBenefits + r.IssuerBenefits) / 5
}

// IconSet lists the benefit icons of an article. Defaults keeps the
// display order; Descriptions overrides an icon's text for this card.
type IconSet struct {
	Defaults     []string          `json:"defaults" validate:"dive,required"`
	Descriptions map[string]string `json:"descriptions,omitempty" validate:"dive,keys,required,endkeys,max=300"`
}

// Article is one credit card review.
type Article struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug" validate:"required,slug,max=120"`
	Title       string    `json:"title" validate:"required,max=200"`
	CardImage   string    `json:"card_image" validate:"max=500"`
	CTALink     string    `json:"cta_link" validate:"omitempty,url"`
	Writer      string    `json:"writer"`
	Reviewer    string    `json:"reviewer"`
	Checker     string    `json:"checker"`
	Tags        Tags      `json:"tags"`
	Ratings     Ratings   `json:"ratings"`
	Icons       IconSet   `json:"icons"`
	Description string    `json:"description" validate:"max=500"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Ref identifies one stored version of the article body.
func (a *Article) Ref() string {
	return a.Slug + "@" + a.UpdatedAt.UTC().Format(time.RFC3339Nano)
}

// Author writes, reviews or fact-checks articles.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required,max=120"`
	Photo string `json:"photo" validate:"max=500"`
}

// Icon is a benefit pictogram with its default description.
type Icon struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=80"`
	ImagePath   string `json:"image_path" validate:"required,max=500"`
	Description string `json:"description" validate:"max=300"`
}
