package upstream

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dgallion1/cardpress/internal/articles"
)

type legacyAuthor struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type legacyIcon struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	ImagePath   string `json:"imagePath"`
	Description string `json:"description"`
}

type legacyTags struct {
	Bank    string `json:"bankTag"`
	Issuer  string `json:"issuerTag"`
	Benefit string `json:"benefitTag"`
}

// authorRef is either an author ID or an embedded author document; the
// backend populates references on read and expects IDs on write.
type authorRef string

func (r *authorRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = authorRef(id)
		return nil
	}
	var doc legacyAuthor
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = authorRef(doc.ID)
	return nil
}

type legacyArticle struct {
	ID                      string            `json:"_id,omitempty"`
	Slug                    string            `json:"slug"`
	Title                   string            `json:"title"`
	CardImage               string            `json:"cardImage"`
	CTALink                 string            `json:"ctaLink"`
	Writers                 authorRef         `json:"writers,omitempty"`
	Reviewers               authorRef         `json:"reviewers,omitempty"`
	Checkers                authorRef         `json:"checkers,omitempty"`
	Tags                    legacyTags        `json:"tags"`
	MainFeatures            float64           `json:"mainFeatures"`
	Taxes                   float64           `json:"taxes"`
	OtherFeatures           float64           `json:"otherFeatures"`
	CardBenefits            float64           `json:"cardBenefits"`
	IssuerBenefits          float64           `json:"issuerBenefits"`
	DefaultIcons            []string          `json:"defaultIcons"`
	DefaultIconDescriptions map[string]string `json:"defaultIconDescriptions,omitempty"`
	ArticleDescription      string            `json:"articleDescription"`
	Content                 string            `json:"content"`
	CreatedAt               *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt               *time.Time        `json:"updatedAt,omitempty"`
}

func (la legacyArticle) toArticle() articles.Article {
	a := articles.Article{
		ID:        la.ID,
		Slug:      strings.TrimSpace(la.Slug),
		Title:     strings.TrimSpace(la.Title),
		CardImage: la.CardImage,
		CTALink:   la.CTALink,
		Writer:    string(la.Writers),
		Reviewer:  string(la.Reviewers),
		Checker:   string(la.Checkers),
		Tags: articles.Tags{
			Bank:    la.Tags.Bank,
			Issuer:  la.Tags.Issuer,
			Benefit: la.Tags.Benefit,
		},
		Ratings: articles.Ratings{
			MainFeatures:   la.MainFeatures,
			Taxes:          la.Taxes,
			OtherFeatures:  la.OtherFeatures,
			CardBenefits:   la.CardBenefits,
			IssuerBenefits: la.IssuerBenefits,
		},
		Icons: articles.IconSet{
			Defaults:     la.DefaultIcons,
			Descriptions: la.DefaultIconDescriptions,
		},
		Description: la.ArticleDescription,
		Content:     la.Content,
	}
	if la.CreatedAt != nil {
		a.CreatedAt = la.CreatedAt.UTC()
	}
	if la.UpdatedAt != nil {
		a.UpdatedAt = la.UpdatedAt.UTC()
	}
	return a
}

func fromArticle(a *articles.Article) legacyArticle {
	return legacyArticle{
		Slug:      a.Slug,
		Title:     a.Title,
		CardImage: a.CardImage,
		CTALink:   a.CTALink,
		Writers:   authorRef(a.Writer),
		Reviewers: authorRef(a.Reviewer),
		Checkers:  authorRef(a.Checker),
		Tags: legacyTags{
			Bank:    a.Tags.Bank,
			Issuer:  a.Tags.Issuer,
			Benefit: a.Tags.Benefit,
		},
		MainFeatures:            a.Ratings.MainFeatures,
		Taxes:                   a.Ratings.Taxes,
		OtherFeatures:           a.Ratings.OtherFeatures,
		CardBenefits:            a.Ratings.CardBenefits,
		IssuerBenefits:          a.Ratings.IssuerBenefits,
		DefaultIcons:            a.Icons.Defaults,
		DefaultIconDescriptions: a.Icons.Descriptions,
		ArticleDescription:      a.Description,
		Content:                 a.Content,
	}
}
