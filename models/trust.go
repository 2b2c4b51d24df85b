package models

import "time"

// TrustDocument is a power of attorney. Number is unique across all trust documents.
type TrustDocument struct {
	ID        string    `bson:"id" json:"id"`
	Number    int       `bson:"number" json:"number"`
	File      []byte    `bson:"file" json:"-"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Passport  string    `bson:"passport" json:"passport"`
	IssuedBy  string    `bson:"issuedBy" json:"issuedBy"`
	IssueDate string    `bson:"issueDate" json:"issueDate"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
