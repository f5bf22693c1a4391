package domain

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScopeQuery returns the appointment filter for the caller's role. Patients
// are scoped to their own records, doctors see everything. An unrecognized
// role yields a filter that matches nothing: the closed two-value set must
// fail closed, never fall through to an unscoped read.
func ScopeQuery(role Role, userID primitive.ObjectID) bson.M {
	switch role {
	case RolePatient:
		return bson.M{"userId": userID}
	case RoleDoctor:
		return bson.M{}
	default:
		return bson.M{"_id": primitive.NilObjectID}
	}
}

// ShouldPopulateRequester reports whether appointment reads expand the owning
// patient's public fields. Only doctors get the expansion.
func ShouldPopulateRequester(role Role) bool {
	return role == RoleDoctor
}
