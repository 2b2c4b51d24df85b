// File: models/counterparty.go
package models

import "time"

// NotSpecified is stored in optional banking fields the user skipped.
const NotSpecified = "Не указан"

// Counterparty is an external business entity contracts are issued to.
// Contracts and Appendices are embedded and owned exclusively by it.
type Counterparty struct {
	ID             string     `bson:"id" json:"id"`
	Name           string     `bson:"name" json:"name"`
	TaxID          string     `bson:"taxId" json:"taxId"` // "ИНН/КПП"
	LegalAddress   string     `bson:"legalAddress" json:"legalAddress"`
	RegNumber      string     `bson:"regNumber" json:"regNumber"` // ОГРН / ОГРНИП
	SignatoryTitle string     `bson:"signatoryTitle" json:"signatoryTitle"`
	SignatoryName  string     `bson:"signatoryName" json:"signatoryName"`
	SigningBasis   string     `bson:"signingBasis" json:"signingBasis"`
	BankName       string     `bson:"bankName" json:"bankName"`
	RoutingCode    string     `bson:"routingCode" json:"routingCode"` // БИК
	Account        string     `bson:"account" json:"account"`
	CorrAccount    string     `bson:"corrAccount" json:"corrAccount"`
	Contracts      []Contract `bson:"contracts" json:"contracts"`
	Appendices     []Appendix `bson:"appendices" json:"appendices"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Contract is a generated or uploaded contract document.
type Contract struct {
	Number    int       `bson:"number" json:"number"`
	File      []byte    `bson:"file" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Appendix itemizes services issued against a contract.
type Appendix struct {
	Number         int       `bson:"number" json:"number"`
	File           []byte    `bson:"file" json:"-"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	ContractNumber int       `bson:"contractNumber" json:"contractNumber"`
}

// NewCounterparty returns a draft with banking fields set to NotSpecified.
func NewCounterparty() Counterparty {
	return Counterparty{
		BankName:    NotSpecified,
		RoutingCode: NotSpecified,
		Account:     NotSpecified,
		CorrAccount: NotSpecified,
	}
}

// NextContractNumber is max(existing)+1, or 1 when there are none.
func (c *Counterparty) NextContractNumber() int {
	max := 0
	for _, ct := range c.Contracts {
		if ct.Number > max {
			max = ct.Number
		}
	}
	return max + 1
}

// NextAppendixNumber is max(existing)+1, or 1 when there are none.
func (c *Counterparty) NextAppendixNumber() int {
	max := 0
	for _, a := range c.Appendices {
		if a.Number > max {
			max = a.Number
		}
	}
	return max + 1
}

// LastContract returns the most recently appended contract.
func (c *Counterparty) LastContract() (Contract, bool) {
	if len(c.Contracts) == 0 {
		return Contract{}, false
	}
	return c.Contracts[len(c.Contracts)-1], true
}

// FindContract looks a contract up by its sequence number.
func (c *Counterparty) FindContract(number int) (Contract, bool) {
	for _, ct := range c.Contracts {
		if ct.Number == number {
			return ct, true
		}
	}
	return Contract{}, false
}

// FindAppendix looks an appendix up by its sequence number.
func (c *Counterparty) FindAppendix(number int) (Appendix, bool) {
	for _, a := range c.Appendices {
		if a.Number == number {
			return a, true
		}
	}
	return Appendix{}, false
}
