package tmdb

// MovieResponse is the payload of GET /movie/{id}
type MovieResponse struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title,omitempty"`
	Overview            string              `json:"overview,omitempty"`
	Runtime             *int                `json:"runtime"`
	Popularity          float64             `json:"popularity"`
	Budget              int64               `json:"budget"`
	ReleaseDate         string              `json:"release_date"`
	PosterPath          *string             `json:"poster_path"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	Genres              []Genre             `json:"genres"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
}

// ProductionCountry is an ISO 3166-1 country entry
type ProductionCountry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SpokenLanguage is an ISO 639-1 language entry
type SpokenLanguage struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// SearchResponse is the payload of GET /search/movie
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// SearchResult is a single search hit
type SearchResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  *string `json:"poster_path"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

// statusResponse is the error body TMDB returns alongside non-2xx codes
type statusResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
