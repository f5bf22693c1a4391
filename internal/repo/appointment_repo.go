package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/nirmitee/clinic-api/internal/domain"
)

const appointmentsColl = "appointments"

func (s *Store) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.appointments.insert",
		tracer.Tag("user_id", a.UserID.Hex()),
	)
	defer sp.Finish()

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	res, err := s.DB.Collection(appointmentsColl).InsertOne(ctx, a)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// UpdateAppointment applies only the fields present in the patch to the
// record matching filter (the role-scoped filter plus the id). Returns the
// matched count so the handler can distinguish out-of-scope from updated.
func (s *Store) UpdateAppointment(ctx context.Context, filter bson.M, patch domain.AppointmentPatch) (int64, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.appointments.update")
	defer sp.Finish()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.StartTime != nil {
		set["startTime"] = *patch.StartTime
	}
	if patch.EndTime != nil {
		set["endTime"] = *patch.EndTime
	}
	res, err := s.DB.Collection(appointmentsColl).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
		return 0, err
	}
	return res.MatchedCount, nil
}

// FindAppointments lists appointments matching the role-scoped filter. When
// populate is set, each row is joined with the owning patient's public fields
// (userName, email).
func (s *Store) FindAppointments(ctx context.Context, filter bson.M, populate bool) ([]domain.Appointment, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.appointments.find",
		tracer.Tag("populate", populate),
	)
	defer sp.Finish()

	coll := s.DB.Collection(appointmentsColl)
	out := []domain.Appointment{}

	if !populate {
		cur, err := coll.Find(ctx, filter)
		if err != nil {
			sp.SetTag("error", err)
			return nil, err
		}
		defer cur.Close(ctx)
		if err := cur.All(ctx, &out); err != nil {
			sp.SetTag("error", err)
			return nil, err
		}
		return out, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         usersColl,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "patient",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"userName": 1, "email": 1}},
			},
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$patient", "preserveNullAndEmptyArrays": true}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return out, nil
}
