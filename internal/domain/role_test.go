package domain

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestScopeQuery(t *testing.T) {
	uid := primitive.NewObjectID()

	got := ScopeQuery(RolePatient, uid)
	if id, ok := got["userId"].(primitive.ObjectID); !ok || id != uid {
		t.Fatalf("patient scope = %v, want userId filter", got)
	}

	if got := ScopeQuery(RoleDoctor, uid); len(got) != 0 {
		t.Fatalf("doctor scope = %v, want unscoped", got)
	}
}

func TestScopeQueryUnknownRoleFailsClosed(t *testing.T) {
	uid := primitive.NewObjectID()
	for _, r := range []Role{0, 3, -1, 99} {
		got := ScopeQuery(r, uid)
		want := bson.M{"_id": primitive.NilObjectID}
		if id, ok := got["_id"].(primitive.ObjectID); !ok || !id.IsZero() || len(got) != 1 {
			t.Fatalf("ScopeQuery(%d) = %v, want %v", r, got, want)
		}
	}
}

func TestShouldPopulateRequester(t *testing.T) {
	if ShouldPopulateRequester(RolePatient) {
		t.Fatal("patient reads must not expand the owner")
	}
	if !ShouldPopulateRequester(RoleDoctor) {
		t.Fatal("doctor reads must expand the owner")
	}
	if ShouldPopulateRequester(Role(7)) {
		t.Fatal("unknown role must not expand the owner")
	}
}

func TestRoleValid(t *testing.T) {
	if !RolePatient.Valid() || !RoleDoctor.Valid() {
		t.Fatal("known roles must be valid")
	}
	for _, r := range []Role{0, 3, -1} {
		if r.Valid() {
			t.Fatalf("Role(%d).Valid() = true", r)
		}
	}
}
