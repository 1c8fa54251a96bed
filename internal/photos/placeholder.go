package photos

import (
	"fmt"

	"github.com/anonto42/nano-gallery/internal/models"
)

const placeholderBase = "https://picsum.photos/seed"

// Placeholders generates a page of stand-in photos. The same page number
// always yields the same photos.
func Placeholders(page, perPage int) models.PhotoPage {
	p := ListParams{Page: page, PerPage: perPage}.normalized()
	photos := make([]models.Photo, 0, p.PerPage)
	for i := 0; i < p.PerPage; i++ {
		seed := fmt.Sprintf("%d-%d", p.Page, i)
		photos = append(photos, models.Photo{
			ID: "placeholder-" + seed,
			URLs: models.PhotoURLs{
				Regular: fmt.Sprintf("%s/%s/800/600", placeholderBase, seed),
				Small:   fmt.Sprintf("%s/%s/400/300", placeholderBase, seed),
				Thumb:   fmt.Sprintf("%s/%s/200/150", placeholderBase, seed),
			},
			Author:         "Demo User",
			AuthorUsername: "demouser",
			Description:    "A beautiful placeholder image",
			Width:          800,
			Height:         600,
		})
	}
	return models.PhotoPage{
		Photos:   photos,
		Page:     p.Page,
		PerPage:  p.PerPage,
		NextPage: p.Page + 1,
		Degraded: true,
	}
}
