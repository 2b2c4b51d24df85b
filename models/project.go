package models

import "time"

// Project is a portfolio case shown in the public gallery.
// Description and DescriptionURL are independent optional fields.
type Project struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Photos         []string  `bson:"photos" json:"photos"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionURL string    `bson:"descriptionUrl,omitempty" json:"descriptionUrl,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// Summary returns the text shown under the first photo.
func (p *Project) Summary() string {
	desc := p.Description
	if desc == "" {
		desc = p.DescriptionURL
	}
	if desc == "" {
		desc = "Нет описания"
	}
	return "Проект: " + p.Name + "\nОписание: " + desc
}
