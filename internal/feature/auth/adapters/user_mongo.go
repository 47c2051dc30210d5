package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

// UsersCollection はユーザーを保存するコレクション名です。
const UsersCollection = "users"

type authenticationDocument struct {
	Password     string `bson:"password,omitempty"`
	Salt         string `bson:"salt,omitempty"`
	SessionToken string `bson:"sessionToken,omitempty"`
}

type userDocument struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty"`
	Username       string                 `bson:"username"`
	Email          string                 `bson:"email"`
	Authentication authenticationDocument `bson:"authentication"`
	CreatedAt      time.Time              `bson:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Email:    d.Email,
		Credential: entity.Credential{
			PasswordHash: d.Authentication.Password,
			Salt:         d.Authentication.Salt,
			SessionToken: d.Authentication.SessionToken,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// publicUserProjection はパスワードとソルトを読み込まないためのプロジェクションです。
var publicUserProjection = bson.D{
	{Key: "authentication.password", Value: 0},
	{Key: "authentication.salt", Value: 0},
}

// userMongo はUserRepositoryインターフェースのMongoDB実装です。
type userMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// userMongoがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo は指定されたデータベースのusersコレクションを使うuserMongoを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(UsersCollection), now: time.Now}
}

// EnsureIndexes はメールアドレスの一意インデックスとセッショントークンのインデックスを作成します。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "authentication.sessionToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

// Create はユーザーを挿入し、生成したIDとタイムスタンプを u に反映します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	now := r.now().UTC()
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Username: u.Username,
		Email:    u.Email,
		Authentication: authenticationDocument{
			Password: u.Credential.PasswordHash,
			Salt:     u.Credential.Salt,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// FindByID はIDでユーザーを取得します。不正なIDは存在しないユーザーとして扱います。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, true)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, true)
}

// FindBySessionToken はセッショントークンでユーザーを取得します。
func (r *userMongo) FindBySessionToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, usecase.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "authentication.sessionToken", Value: token}}, true)
}

// FindByEmailWithCredential はパスワードとソルトを含めてユーザーを取得します。
func (r *userMongo) FindByEmailWithCredential(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, false)
}

// List は全ユーザーを取得します。
func (r *userMongo) List(ctx context.Context) ([]entity.User, error) {
	opts := options.Find().
		SetProjection(publicUserProjection).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toEntity())
	}
	return users, nil
}

// UpdateProfile はユーザー名とメールアドレスを更新し、更新後のユーザーを返します。
func (r *userMongo) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "username", Value: upd.Username},
		{Key: "email", Value: upd.Email},
		{Key: "updatedAt", Value: r.now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicUserProjection)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, usecase.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, usecase.ErrEmailAlreadyExists
	case err != nil:
		return nil, err
	}
	return doc.toEntity(), nil
}

// UpdatePassword はパスワードとソルトを更新します。
func (r *userMongo) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	return r.set(ctx, id, bson.D{
		{Key: "authentication.password", Value: hash},
		{Key: "authentication.salt", Value: salt},
	})
}

// SetSessionToken はユーザーの有効なセッショントークンを置き換えます。
func (r *userMongo) SetSessionToken(ctx context.Context, id, token string) error {
	return r.set(ctx, id, bson.D{{Key: "authentication.sessionToken", Value: token}})
}

// Delete はユーザーを削除します。
func (r *userMongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usecase.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.D, public bool) (*entity.User, error) {
	opts := options.FindOne()
	if public {
		opts.SetProjection(publicUserProjection)
	}
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *userMongo) set(ctx context.Context, id string, fields bson.D) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usecase.ErrUserNotFound
	}
	fields = append(fields, bson.E{Key: "updatedAt", Value: r.now().UTC()})
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
