package recordrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yanqian/weather-records/internal/domain/records"
)

const defaultMongoCollection = "weather_records"

// MongoRepository stores records in a MongoDB collection.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoRecord struct {
	ID           string         `bson:"_id"`
	Location     string         `bson:"location"`
	ResolvedName string         `bson:"resolvedName"`
	StartDate    time.Time      `bson:"startDate"`
	CreatedAt    time.Time      `bson:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt"`
	Record       records.Record `bson:"record"`
}

// NewMongoRepository connects to uri and stores records in database.collection.
func NewMongoRepository(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return newMongoRepository(client, database, collection), nil
}

func newMongoRepository(client *mongo.Client, database, collection string) *MongoRepository {
	if strings.TrimSpace(database) == "" {
		database = "weather"
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultMongoCollection
	}
	return &MongoRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the listing indexes when missing.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "startDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure %s indexes: %w", r.coll.Name(), err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Create(ctx context.Context, record records.Record) error {
	_, err := r.coll.InsertOne(ctx, toMongo(record))
	return err
}

func (r *MongoRepository) List(ctx context.Context, q records.ListQuery) ([]records.Record, int, error) {
	filter := mongoFilter(q)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(mongoSort(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	if q.SortBy == records.SortByLocation {
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (records.Record, error) {
	var doc mongoRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, err
	}
	return doc.Record, nil
}

func (r *MongoRepository) Update(ctx context.Context, record records.Record) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": record.ID}, toMongo(record))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) All(ctx context.Context) ([]records.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]records.Record, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]records.Record, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Record)
	}
	return items, nil
}

func toMongo(record records.Record) mongoRecord {
	return mongoRecord{
		ID:           record.ID,
		Location:     record.OriginalLocationQuery,
		ResolvedName: record.ResolvedLocation.Name,
		StartDate:    record.DateRange.StartDate,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
		Record:       record,
	}
}

func mongoFilter(q records.ListQuery) bson.M {
	filter := bson.M{}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(loc), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"location": pattern},
			bson.M{"resolvedName": pattern},
		}
	}
	dates := bson.M{}
	if q.StartDate != nil {
		dates["$gte"] = q.StartDate.UTC()
	}
	if q.EndDate != nil {
		dates["$lte"] = q.EndDate.UTC()
	}
	if len(dates) > 0 {
		filter["startDate"] = dates
	}
	return filter
}

func mongoSort(q records.ListQuery) bson.D {
	field := "createdAt"
	switch q.SortBy {
	case records.SortByUpdatedAt:
		field = "updatedAt"
	case records.SortByLocation:
		field = "location"
	case records.SortByStartDate:
		field = "startDate"
	}
	dir := -1
	if q.SortOrder == records.SortAsc {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

var _ records.Repository = (*MongoRepository)(nil)
