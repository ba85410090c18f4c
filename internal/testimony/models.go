package testimony

// Status is the review state of a testimony. Submissions always start
// pending; neither approved nor declined is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// Testimony is a congregant submission. Field names and types are load-bearing:
// the RSS consumer and existing data both depend on this exact shape.
type Testimony struct {
	ID           string `json:"id" bson:"id"`
	Date         string `json:"date" bson:"date"`       // YYYY-MM-DD
	Service      string `json:"service" bson:"service"` // Service.Key
	Name         string `json:"name" bson:"name"`
	Phone        string `json:"phone" bson:"phone"`
	Email        string `json:"email" bson:"email"`
	WhatDidYouDo string `json:"whatDidYouDo" bson:"whatDidYouDo"`
	Description  string `json:"description" bson:"description"`
	Status       Status `json:"status" bson:"status"`
	CreatedAt    int64  `json:"createdAt" bson:"createdAt"` // epoch millis, never updated
}

// Service is a named church service slot testimonies are filed under.
type Service struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Key   string `json:"key" bson:"key"`
	Order int    `json:"order" bson:"order"`
}

// DefaultServices seed the services collection the first time it is found
// empty. Thereafter the list is fully admin-managed.
var DefaultServices = []Service{
	{Name: "Midweek Service", Key: "midweek", Order: 1},
	{Name: "First Service", Key: "1st", Order: 2},
	{Name: "Second Service", Key: "2nd", Order: 3},
}

// LiveTestimony is the single record describing what is on the broadcast
// display right now. At most one exists; setting overwrites, clearing removes.
type LiveTestimony struct {
	TestimonyID string `json:"testimonyId" bson:"testimonyId"`
	DisplayName string `json:"displayName" bson:"displayName"`
	Name        string `json:"name" bson:"name"`
	UpdatedAt   int64  `json:"updatedAt" bson:"updatedAt"` // epoch millis
}

// PhoneLookup is the derived projection used to pre-fill a returning
// submitter's form. Never persisted.
type PhoneLookup struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
