package domain

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// ErrDuplicateRecord is returned by record stores when a record with the
// same canonical URL already exists.
var ErrDuplicateRecord = errors.New("record already exists")

// Page is a fetched document delivered together with the state of the
// visit that produced it.
type Page struct {
	URL   string
	State State
	Doc   *goquery.Document
}
