package repo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/nirmitee/clinic-api/internal/domain"
)

const usersColl = "users"

// CreateUser inserts a new user record. Timestamps are set here; the caller
// decides the initial status (registration uses inactive).
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("user_name", u.UserName),
	)
	defer sp.Finish()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := s.DB.Collection(usersColl).InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// FindUserByIdentifier resolves a user by a single query matching either the
// email or the userName field. The identifier is trimmed and lowercased
// before comparison. Returns (nil, nil) when no user matches.
func (s *Store) FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_by_identifier")
	defer sp.Finish()

	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"email": ident},
			bson.M{"userName": ident},
		},
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return s.findUser(ctx, "mongo.users.find_by_username", bson.M{"userName": userName})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "mongo.users.find_by_email", bson.M{"email": email})
}

// FindUserByEmailAndOTP matches both fields in one query, mirroring the OTP
// verification lookups.
func (s *Store) FindUserByEmailAndOTP(ctx context.Context, email, otp string) (*domain.User, error) {
	return s.findUser(ctx, "mongo.users.find_by_email_otp", bson.M{"email": email, "otp": otp})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findUser(ctx, "mongo.users.find_by_id", bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, span string, filter bson.M) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, span)
	defer sp.Finish()

	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// SetOTP overwrites any outstanding one-time code and its expiry.
func (s *Store) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiry time.Time) error {
	return s.updateUser(ctx, "mongo.users.set_otp", bson.M{"_id": id}, bson.M{
		"otp":        otp,
		"codeExpiry": expiry,
	})
}

// MarkEmailVerified performs the activation transition in one update: set
// the verification timestamp, flip the status to active and clear the OTP
// material so the code cannot be replayed.
func (s *Store) MarkEmailVerified(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	return s.updateUser(ctx, "mongo.users.mark_verified", bson.M{"_id": id}, bson.M{
		"emailVerify": when,
		"status":      domain.StatusActive,
		"otp":         "",
		"codeExpiry":  nil,
	})
}

// SetToken persists the session token verbatim, invalidating whichever token
// was stored before. An empty token is a logout.
func (s *Store) SetToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.updateUser(ctx, "mongo.users.set_token", bson.M{"_id": id}, bson.M{"token": token})
}

// ClearTokenByUserName nulls the stored token for the named user.
func (s *Store) ClearTokenByUserName(ctx context.Context, userName string) error {
	return s.updateUser(ctx, "mongo.users.clear_token", bson.M{"userName": userName}, bson.M{"token": ""})
}

// UpdatePassword stores the new hash. clearOTP also wipes the OTP material in
// the same write, which is how a reset enforces single-use of the code.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, clearOTP bool) error {
	set := bson.M{"password": hash}
	if clearOTP {
		set["otp"] = ""
		set["codeExpiry"] = nil
	}
	return s.updateUser(ctx, "mongo.users.update_password", bson.M{"_id": id}, set)
}

// UpdateProfile applies only the fields present in the patch.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch domain.ProfilePatch) error {
	set := bson.M{}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if len(set) == 0 {
		return nil
	}
	return s.updateUser(ctx, "mongo.users.update_profile", bson.M{"_id": id}, set)
}

// DeleteUserByUserName removes a record outright. Only the seeding path uses
// this; the API soft-deletes via status.
func (s *Store) DeleteUserByUserName(ctx context.Context, userName string) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.delete")
	defer sp.Finish()
	_, err := s.DB.Collection(usersColl).DeleteOne(ctx, bson.M{"userName": userName})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) updateUser(ctx context.Context, span string, filter, set bson.M) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, span)
	defer sp.Finish()

	set["updatedAt"] = time.Now().UTC()
	_, err := s.DB.Collection(usersColl).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}
