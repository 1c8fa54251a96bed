package models

// PhotoURLs holds the renditions of a photo
type PhotoURLs struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
	Thumb   string `json:"thumb"`
}

// Photo is a read-only image from the external photo API
type Photo struct {
	ID             string    `json:"id"`
	URLs           PhotoURLs `json:"urls"`
	Author         string    `json:"author"`
	AuthorUsername string    `json:"author_username"`
	Description    string    `json:"description"`
	Likes          int       `json:"likes"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
}

// PhotoPage is one page of gallery results
type PhotoPage struct {
	Photos     []Photo `json:"photos"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	NextPage   int     `json:"next_page,omitempty"`
	TotalPages int     `json:"total_pages,omitempty"`
	Total      int     `json:"total,omitempty"`
	Degraded   bool    `json:"degraded"`
}

// HasMore reports whether another page can be requested.
func (p PhotoPage) HasMore() bool { return p.NextPage > 0 }
