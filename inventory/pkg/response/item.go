package response

import (
	"github.com/Alturino/marketplace/internal/item"
)

const (
	MessageUploadSuccessful = "Upload successful!"
	MessageDuplicateUpload  = "This %s already exists for the seller. Duplicate uploads are not allowed."
)

// Item flattens either variant into one JSON object tagged with its type.
type Item struct {
	item.Listing
	Type         item.Type `json:"type"`
	Author       string    `json:"author,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Category     string    `json:"category,omitempty"`
}

type Upload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Item    *Item  `json:"item"`
}

func FromItem(i item.Item) Item {
	resp := Item{Listing: i.Details(), Type: i.Type()}
	switch v := i.(type) {
	case item.Book:
		resp.Author = v.Author
	case item.HomeItem:
		resp.Manufacturer = v.Manufacturer
		resp.Category = v.Category
	}
	if resp.Reviews == nil {
		resp.Reviews = []item.Review{}
	}
	return resp
}

func FromItems(items []item.Item) []Item {
	mapped := make([]Item, len(items))
	for i, it := range items {
		mapped[i] = FromItem(it)
	}
	return mapped
}
