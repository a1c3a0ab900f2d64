// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category is flat grouping metadata for templates. Templates reference it
// by slug in Metadata.Category.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameRO    string    `json:"name_ro,omitempty"`
	Slug      string    `json:"slug"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
