// Package models defines data structures used across the application.
// File: models/partner.go
package models

import "time"

// ----------------------- partner status -----------------------

// Partner status values as stored in the partners collection.
const (
	PartnerStatusPending  = "pending"
	PartnerStatusApproved = "approved"
	PartnerStatusRejected = "rejected"
)

// ----------------------- partner model -----------------------

// Partner represents an association member. Approved partners own a
// payments subcollection with one document per season.
type Partner struct {
	ID            string     `firestore:"-" json:"id"`
	Name          string     `firestore:"name" json:"name"`
	LastName      string     `firestore:"lastName" json:"lastName"`
	Email         string     `firestore:"email" json:"email"`
	DNI           string     `firestore:"dni" json:"dni"`
	Phone         string     `firestore:"phone" json:"phone"`
	Address       string     `firestore:"address" json:"address"`
	AccountNumber string     `firestore:"accountNumber" json:"accountNumber"`
	BirthDate     *time.Time `firestore:"birthDate" json:"birthDate"`
	Status        string     `firestore:"status" json:"status"`
	CreatedAt     time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate    time.Time  `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// ----------------------- payment model -----------------------

// Payment is one season's fee record for a partner, split into up to
// three fractions. One canonical "done" boolean per fraction; each
// fraction also carries its payment date and the price that was due.
type Payment struct {
	ID                 string     `firestore:"-" json:"id"`
	SeasonYear         int        `firestore:"seasonYear" json:"seasonYear"`
	FirstPaymentDone   bool       `firestore:"firstPaymentDone" json:"firstPaymentDone"`
	FirstPaymentDate   *time.Time `firestore:"firstPaymentDate" json:"firstPaymentDate"`
	FirstPaymentPrice  float64    `firestore:"firstPaymentPrice" json:"firstPaymentPrice"`
	SecondPaymentDone  bool       `firestore:"secondPaymentDone" json:"secondPaymentDone"`
	SecondPaymentDate  *time.Time `firestore:"secondPaymentDate" json:"secondPaymentDate"`
	SecondPaymentPrice float64    `firestore:"secondPaymentPrice" json:"secondPaymentPrice"`
	ThirdPaymentDone   bool       `firestore:"thirdPaymentDone" json:"thirdPaymentDone"`
	ThirdPaymentDate   *time.Time `firestore:"thirdPaymentDate" json:"thirdPaymentDate"`
	ThirdPaymentPrice  float64    `firestore:"thirdPaymentPrice" json:"thirdPaymentPrice"`
	UserID             string     `firestore:"userId" json:"userId"`
	CreatedAt          time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate         time.Time  `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// PartnerPayments groups a partner's payment documents by season bucket.
// Current is nil when there is no active season or no matching payment.
// Historical is sorted descending by season year.
type PartnerPayments struct {
	Current    *Payment  `json:"current"`
	Historical []Payment `json:"historical"`
}

// PaymentResult is the tagged outcome of a create-payment call, so
// callers can tell "newly created" from "already present" without an error.
type PaymentResult struct {
	Created  bool     `json:"created"`
	Existing bool     `json:"existing"`
	Payment  *Payment `json:"payment"`
}
