package jumpseller

import (
	"encoding/json"
	"strconv"
	"time"
)

// Product represents a Jumpseller product as returned by the API.
type Product struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	SKU         string        `json:"sku"`
	Permalink   string        `json:"permalink"`
	Images      []Image       `json:"images"`
	Fields      []CustomField `json:"fields"`
}

// Image represents a product image. Position starts at 1 upstream.
type Image struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// CustomField is one label/value pair attached to a product.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Review represents a product review. Rating is kept raw because upstream
// sends it inconsistently as a number or a string; ScoreValue parses it.
type Review struct {
	ID        int64      `json:"id"`
	Rating    Rating     `json:"rating"`
	Text      string     `json:"text"`
	Email     string     `json:"email"`
	Likes     int        `json:"likes"`
	Dislikes  int        `json:"dislikes"`
	CreatedAt *time.Time `json:"created_at"`
}

// Rating accepts both the numeric and the string form upstream sends.
type Rating string

func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Rating(s)
		return nil
	}
	*r = Rating(data)
	return nil
}

// ScoreValue parses the raw rating. The second return is false when the
// rating is non-numeric or outside the inclusive range 1-5.
func (r Review) ScoreValue() (float64, bool) {
	v, err := strconv.ParseFloat(string(r.Rating), 64)
	if err != nil || v < 1 || v > 5 {
		return 0, false
	}
	return v, true
}

// The list endpoints wrap each record in an envelope ({"product": {...}})
// but single-record responses and some deployments return the bare shape.
// Both are normalized here, at the decode boundary, so nothing downstream
// ever sees the wrapped form.

type productEnvelope struct {
	Product Product
}

func (e *productEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Product *Product `json:"product"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Product != nil {
		e.Product = *wrapped.Product
		return nil
	}
	return json.Unmarshal(data, &e.Product)
}

type reviewEnvelope struct {
	Review Review
}

func (e *reviewEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Review *Review `json:"review"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Review != nil {
		e.Review = *wrapped.Review
		return nil
	}
	return json.Unmarshal(data, &e.Review)
}
