package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mcoot/fxdesk/internal/model"
)

// userDocument mirrors a record in the users collection. Password fields are
// kept raw: bcrypt hashes are stored as binary, legacy digests as hex strings.
type userDocument struct {
	Username          string        `bson:"username"`
	DisplayName       string        `bson:"display_name"`
	Email             string        `bson:"email"`
	Password          bson.RawValue `bson:"password"`
	SecondaryPassword bson.RawValue `bson:"secondary_password"`
	Role              string        `bson:"role"`
	Active            bool          `bson:"active"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		Username:          d.Username,
		DisplayName:       d.DisplayName,
		Email:             d.Email,
		Role:              model.Role(d.Role),
		Active:            d.Active,
		Password:          hashFromRaw(d.Password),
		SecondaryPassword: hashFromRaw(d.SecondaryPassword),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// userFields encodes every mutable field of a user. Empty hashes are left out
// so an update never clears a stored credential by accident.
func userFields(u *model.User) bson.D {
	fields := bson.D{
		{Key: "username", Value: u.Username},
		{Key: "display_name", Value: u.DisplayName},
		{Key: "email", Value: u.Email},
		{Key: "role", Value: string(u.Role)},
		{Key: "active", Value: u.Active},
		{Key: "created_at", Value: u.CreatedAt},
		{Key: "updated_at", Value: u.UpdatedAt},
	}
	if v := hashToBSON(u.Password); v != nil {
		fields = append(fields, bson.E{Key: "password", Value: v})
	}
	if v := hashToBSON(u.SecondaryPassword); v != nil {
		fields = append(fields, bson.E{Key: "secondary_password", Value: v})
	}
	return fields
}

func hashFromRaw(rv bson.RawValue) model.PasswordHash {
	switch rv.Type {
	case bson.TypeBinary:
		_, data := rv.Binary()
		return model.PasswordHash{Scheme: model.HashSchemeBcrypt, Value: append([]byte(nil), data...)}
	case bson.TypeString:
		return model.PasswordHash{Scheme: model.HashSchemeLegacySHA256, Value: []byte(rv.StringValue())}
	default:
		return model.PasswordHash{}
	}
}

func hashToBSON(h model.PasswordHash) any {
	if h.IsZero() {
		return nil
	}
	switch h.Scheme {
	case model.HashSchemeLegacySHA256:
		return string(h.Value)
	default:
		return bson.Binary{Subtype: 0x00, Data: h.Value}
	}
}

// idFilter matches a document by its rendered id. Ids that look like object
// ids match either representation since older records use generated ones.
func idFilter(id string) bson.M {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// fromBSON converts a decoded document into the driver-neutral form.
func fromBSON(m bson.M) model.Document {
	doc := make(model.Document, len(m))
	for k, v := range m {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch x := v.(type) {
	case bson.DateTime:
		return x.Time().UTC()
	case bson.M:
		return fromBSON(x)
	case bson.D:
		doc := make(model.Document, len(x))
		for _, e := range x {
			doc[e.Key] = normalize(e.Value)
		}
		return doc
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case int32:
		return int64(x)
	default:
		return v
	}
}
