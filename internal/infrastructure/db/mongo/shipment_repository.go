package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

const collectionShipments = "shipments"

// ShipmentRepository implements ports.ShipmentRepository on a single MongoDB
// collection. Each shipment is one document owning its checkpoint and
// subscriber arrays, so single-document update semantics give the required
// per-shipment atomicity: concurrent $push appends serialize on the document
// and readers never observe a half-written checkpoint.
type ShipmentRepository struct {
	col *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// Create inserts a new shipment document. The unique index on
// tracking_number turns concurrent duplicate creates into
// domain.ErrDuplicateShipment.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"tracking_number": s.TrackingNumber,
		"title":           s.Title,
		"origin":          s.Origin,
		"destination":     s.Destination,
		"status":          string(s.Status),
		"checkpoints":     []domain.Checkpoint{},
		"subscribers":     []domain.Subscriber{},
		"created_at":      s.CreatedAt,
		"updated_at":      s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateShipment
		}
		return err
	}
	return nil
}

func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Shipment
	err := r.col.FindOne(ctx, bson.M{"tracking_number": trackingNumber}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepository) List(ctx context.Context, limit int) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domain.Shipment
	for cursor.Next(ctx) {
		var s domain.Shipment
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cursor.Err()
}

// AppendCheckpoint atomically pushes cp onto the checkpoint array and sets
// the derived status in the same update, returning the post-update document.
// $push preserves arrival order, which keeps the sequence append-only and
// totally ordered.
func (r *ShipmentRepository) AppendCheckpoint(ctx context.Context, trackingNumber string, cp domain.Checkpoint, status, override domain.ShipmentStatus) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if override != "" {
		set["status_override"] = string(override)
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"checkpoints": cp},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s domain.Shipment
	err := r.col.FindOneAndUpdate(ctx, bson.M{"tracking_number": trackingNumber}, update, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// AddSubscriber registers an email idempotently: an existing row is
// reactivated in place, otherwise a new row is pushed. The push is guarded by
// an $ne filter on the email, so a concurrent duplicate registration cannot
// produce two rows.
func (r *ShipmentRepository) AddSubscriber(ctx context.Context, trackingNumber, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Reactivate when the (shipment, email) pair already exists.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"tracking_number": trackingNumber, "subscribers.email": email},
		bson.M{"$set": bson.M{"subscribers.$.is_active": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = r.col.UpdateOne(ctx,
		bson.M{"tracking_number": trackingNumber, "subscribers.email": bson.M{"$ne": email}},
		bson.M{"$push": bson.M{"subscribers": domain.Subscriber{
			Email:    email,
			AddedAt:  time.Now().UTC(),
			IsActive: true,
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the shipment is missing or a concurrent registration won.
		if _, err := r.FindByTrackingNumber(ctx, trackingNumber); err != nil {
			return err
		}
	}
	return nil
}

// RemoveSubscriber deactivates a subscriber row. Removing an absent
// subscriber is a no-op so long as the shipment exists.
func (r *ShipmentRepository) RemoveSubscriber(ctx context.Context, trackingNumber, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"tracking_number": trackingNumber, "subscribers.email": email},
		bson.M{"$set": bson.M{"subscribers.$.is_active": false}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByTrackingNumber(ctx, trackingNumber); err != nil {
			return err
		}
	}
	return nil
}

func (r *ShipmentRepository) ListSubscribers(ctx context.Context, trackingNumber string) ([]domain.Subscriber, error) {
	s, err := r.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	return s.ActiveSubscribers(), nil
}

func (r *ShipmentRepository) ListCheckpoints(ctx context.Context, trackingNumber string) ([]domain.Checkpoint, error) {
	s, err := r.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	return s.Checkpoints, nil
}

// EnsureIndexes creates the indexes the repository relies on; the unique
// tracking_number index backs duplicate-create detection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
