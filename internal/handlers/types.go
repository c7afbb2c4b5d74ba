package handlers

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"The long URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// ShortenResponse returns the token assigned to a URL.
type ShortenResponse struct {
	Status   int
	Location string `doc:"The short token" header:"Location"`
	Body     struct {
		Token string `doc:"The short token"     example:"https://short.url/1SbPJ6"          json:"token"`
		URL   string `doc:"The original URL"    example:"https://example.com/very/long/path" json:"url"`
	}
}

// ExpandRequest looks a token up by its full value.
type ExpandRequest struct {
	Token string `doc:"The full short token" example:"https://short.url/1SbPJ6" query:"token" required:"true"`
}

// ExpandResponse returns the URL behind a token.
type ExpandResponse struct {
	Body struct {
		URL string `doc:"The original URL" example:"https://example.com/very/long/path" json:"url"`
	}
}

// RedirectRequest addresses a token by the part after the prefix.
type RedirectRequest struct {
	Code string `doc:"The encoded part of the token" example:"1SbPJ6" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
