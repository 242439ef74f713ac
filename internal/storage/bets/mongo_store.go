package bets

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "roulette"
	betsCollection       = "bets"
	countersCollection   = "counters"
	betSequence          = "bets"
)

type betDocument struct {
	ID        uint64    `bson:"_id"`
	Player    string    `bson:"player"`
	Amount    float64   `bson:"amount"`
	BetType   string    `bson:"betType"`
	Result    int       `bson:"result"`
	Win       bool      `bson:"win"`
	Timestamp time.Time `bson:"timestamp"`
}

// MongoStore keeps bets in a MongoDB collection. IDs come from a counter document
// so they stay numeric and ordered like the other backends.
type MongoStore struct {
	client   *mongo.Client
	bets     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewMongoStore connects to uri and uses database db.
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	database := client.Database(db)
	bets := database.Collection(betsCollection)

	_, err = bets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "player", Value: 1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "create bet index")
	}

	return &MongoStore{
		client:   client,
		bets:     bets,
		counters: database.Collection(countersCollection),
		now:      time.Now,
	}, nil
}

func (s *MongoStore) nextID(ctx context.Context) (uint64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": betSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, errors.Wrap(err, "next bet id")
	}
	return uint64(counter.Seq), nil
}

func (s *MongoStore) Append(ctx context.Context, rec domain.BetRecord) (domain.BetRecord, error) {
	if err := validate(rec); err != nil {
		return domain.BetRecord{}, err
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return domain.BetRecord{}, err
	}
	rec = stamp(rec, id, s.now())

	if _, err := s.bets.InsertOne(ctx, betDocument(rec)); err != nil {
		return domain.BetRecord{}, errors.Wrap(err, "insert bet")
	}
	return rec, nil
}

func (s *MongoStore) Recent(ctx context.Context, player string, limit int) ([]domain.BetRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	filter := bson.M{}
	if player != "" {
		filter["player"] = player
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit))
	return s.find(ctx, filter, opts)
}

func (s *MongoStore) After(ctx context.Context, id uint64) ([]domain.BetRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{"_id": bson.M{"$gt": id}}, opts)
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.BetRecord, error) {
	cursor, err := s.bets.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find bets")
	}

	var docs []betDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode bets")
	}

	out := make([]domain.BetRecord, 0, len(docs))
	for _, d := range docs {
		rec := domain.BetRecord(d)
		rec.Timestamp = rec.Timestamp.UTC()
		out = append(out, rec)
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
