package domain

import "time"

// Banner is a time-bounded promotional entry on a store page.
// Start and end instants are RFC3339 strings, boundaries inclusive.
type Banner struct {
	ID          string `db:"id" json:"id"`
	StoreID     string `db:"store_id" json:"-"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
	Link        string `db:"link" json:"link"`
	StartDate   string `db:"start_date" json:"startDate"`
	EndDate     string `db:"end_date" json:"endDate"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

// ActiveAt reports whether now falls within [StartDate, EndDate].
// Unparseable instants make the banner inactive.
func (b Banner) ActiveAt(now time.Time) bool {
	start, err := time.Parse(time.RFC3339, b.StartDate)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, b.EndDate)
	if err != nil {
		return false
	}
	return !now.Before(start) && !now.After(end)
}

type Store struct {
	ID               string `db:"id" json:"id"`
	OwnerID          string `db:"owner_id" json:"-"`
	Name             string `db:"name" json:"name"`
	Slug             string `db:"slug" json:"slug"`
	StoreInformation string `db:"store_information" json:"storeInformation"`
	WhatSell         string `db:"what_sell" json:"whatSell"`
	Logo             string `db:"logo" json:"logo"`
	BrandColor       string `db:"brand_color" json:"brandColor"`
	HeroImage        string `db:"hero_image" json:"heroImage"`
	Heading          string `db:"heading" json:"heading"`
	SubHeading       string `db:"sub_heading" json:"subHeading"`
	Active           bool   `db:"active" json:"active"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
	UpdatedAt        string `db:"updated_at" json:"updatedAt,omitempty"`

	Banners  []Banner  `db:"-" json:"banners,omitempty"`
	Products []Product `db:"-" json:"products,omitempty"`
}
