package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId"        json:"userId"`
	Title     string             `bson:"title"         json:"title"`
	Date      time.Time          `bson:"date"          json:"date"`
	StartTime string             `bson:"startTime"     json:"startTime"`
	EndTime   string             `bson:"endTime"       json:"endTime"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`

	// Patient carries the owning patient's public fields when the requester
	// is a doctor; nil otherwise.
	Patient *PatientRef `bson:"patient,omitempty" json:"patient,omitempty"`
}

// PatientRef is the public projection of the owning patient expanded into
// doctor-facing appointment reads.
type PatientRef struct {
	ID       primitive.ObjectID `bson:"_id"      json:"id"`
	UserName string             `bson:"userName" json:"userName"`
	Email    string             `bson:"email"    json:"email"`
}

// AppointmentPatch applies each field only when present.
type AppointmentPatch struct {
	Title     *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
}
